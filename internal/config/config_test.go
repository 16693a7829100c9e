package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LESSONS_DATABASE__URI", "mongodb://localhost:27017")
	t.Setenv("LESSONS_AUTH__JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "VueCourseworkLessons", cfg.Database.Name)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "lessons", cfg.Store.Lessons)
	assert.Equal(t, "Orders", cfg.Store.Orders)
	assert.Equal(t, "Users", cfg.Store.Users)
	assert.Empty(t, cfg.Store.Collections)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_NestedKeys(t *testing.T) {
	t.Setenv("LESSONS_PRIMARY__ENV", "production")
	t.Setenv("LESSONS_SERVER__PORT", "8081")
	t.Setenv("LESSONS_SERVER__READ_TIMEOUT", "3s")
	t.Setenv("LESSONS_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LESSONS_DATABASE__URI", "mongodb://db:27017")
	t.Setenv("LESSONS_STORE__COLLECTIONS", "lessons,Orders")
	t.Setenv("LESSONS_AUTH__JWT_SECRET", "secret")
	t.Setenv("LESSONS_AUTH__BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, []string{"lessons", "Orders"}, cfg.Store.Collections)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("LESSONS_DATABASE__URI", "mongodb://localhost:27017")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSecret")
}

func TestLoad_MissingDatabase(t *testing.T) {
	t.Setenv("LESSONS_AUTH__JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestDatabaseConfig_ConnectionURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "explicit uri wins",
			cfg:  DatabaseConfig{URI: "mongodb://x", Host: "@ignored"},
			want: "mongodb://x",
		},
		{
			name: "parts",
			cfg: DatabaseConfig{
				Prefix:   "mongodb+srv://",
				User:     "app",
				Password: "pw",
				Host:     "@cluster0.example.net",
				Params:   "/?retryWrites=true",
			},
			want: "mongodb+srv://app:pw@cluster0.example.net/?retryWrites=true",
		},
		{
			name: "no credentials",
			cfg:  DatabaseConfig{Prefix: "mongodb://", Host: "localhost:27017"},
			want: "mongodb://localhost:27017",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ConnectionURI())
		})
	}
}
