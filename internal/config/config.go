// Package config loads the service configuration from LESSONS_* environment
// variables (optionally seeded from a .env file).
//
// Nesting levels are separated by a double underscore:
//
//	LESSONS_SERVER__PORT=3000        -> server.port
//	LESSONS_DATABASE__NAME=lessons   -> database.name
//	LESSONS_AUTH__JWT_SECRET=...     -> auth.jwt_secret
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "LESSONS_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Store    StoreConfig    `koanf:"store"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type Primary struct {
	Env string `koanf:"env" validate:"oneof=development production test"`
}

type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	IdleTimeout        time.Duration `koanf:"idle_timeout"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	StaticDir          string        `koanf:"static_dir"`
	StaticPrefix       string        `koanf:"static_prefix"`
}

// DatabaseConfig accepts either a full URI or the individual parts of one.
// The parts are joined verbatim, so Host is expected to carry its leading
// "@" and Params its leading "/" or "?".
type DatabaseConfig struct {
	URI            string        `koanf:"uri"`
	Prefix         string        `koanf:"prefix"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	Host           string        `koanf:"host"`
	Params         string        `koanf:"params"`
	Name           string        `koanf:"name" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

type StoreConfig struct {
	// Collections restricts the generic routes to these names when non-empty.
	Collections []string `koanf:"collections"`
	Lessons     string   `koanf:"lessons" validate:"required"`
	Orders      string   `koanf:"orders" validate:"required"`
	Users       string   `koanf:"users" validate:"required"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"min=0,max=31"`
	RateLimit  float64       `koanf:"rate_limit"`
	RateBurst  int           `koanf:"rate_burst" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ConnectionURI returns the configured URI, or builds one from its parts
// as prefix + user:password + host + params.
func (d DatabaseConfig) ConnectionURI() string {
	if d.URI != "" {
		return d.URI
	}
	var b strings.Builder
	b.WriteString(d.Prefix)
	if d.User != "" {
		b.WriteString(d.User)
		b.WriteString(":")
		b.WriteString(d.Password)
	}
	b.WriteString(d.Host)
	b.WriteString(d.Params)
	return b.String()
}

func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}

// Load reads LESSONS_* variables, applies defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	if cfg.Database.ConnectionURI() == "" {
		return nil, errors.New("validate config: database.uri or database.host is required")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}

	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.StaticPrefix == "" {
		c.Server.StaticPrefix = "/images"
	}

	if c.Database.Name == "" {
		c.Database.Name = "VueCourseworkLessons"
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 10 * time.Second
	}

	if c.Store.Lessons == "" {
		c.Store.Lessons = "lessons"
	}
	if c.Store.Orders == "" {
		c.Store.Orders = "Orders"
	}
	if c.Store.Users == "" {
		c.Store.Users = "Users"
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.RateLimit == 0 {
		c.Auth.RateLimit = 5
	}
	if c.Auth.RateBurst == 0 {
		c.Auth.RateBurst = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		if c.IsProduction() {
			c.Logging.Format = "json"
		} else {
			c.Logging.Format = "console"
		}
	}
}
