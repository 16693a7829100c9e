package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/lessons-api/internal/config"
	"github.com/harentsoaR/lessons-api/internal/handlers"
	"github.com/harentsoaR/lessons-api/internal/logger"
	"github.com/harentsoaR/lessons-api/internal/middleware"
	"github.com/harentsoaR/lessons-api/internal/server"
	"github.com/harentsoaR/lessons-api/internal/store"
	"github.com/harentsoaR/lessons-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.Logging, cfg.Primary.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	// The listener is only created once the store answers a ping.
	db, err := store.Connect(ctx, store.Options{
		URI:            cfg.Database.ConnectionURI(),
		Database:       cfg.Database.Name,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		Collections:    cfg.Store.Collections,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(disconnectCtx); err != nil {
			logg.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logg.Info().Str("database", cfg.Database.Name).Msg("Successfully connected to MongoDB")

	if err := db.EnsureUniqueIndex(ctx, cfg.Store.Users, "email"); err != nil {
		logg.Fatal().Err(err).Msg("Failed to create users email index")
	}

	// --- Handlers ---
	h := handlers.NewHandler(
		db,
		utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		handlers.Options{
			Lessons:    cfg.Store.Lessons,
			Orders:     cfg.Store.Orders,
			Users:      cfg.Store.Users,
			BcryptCost: cfg.Auth.BcryptCost,
		},
		logg,
	)

	var limiter *middleware.RateLimiter
	if cfg.Auth.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	}

	router := server.NewRouter(h, server.RouterOptions{
		CORSOrigins:  cfg.Server.CORSAllowedOrigins,
		StaticPrefix: cfg.Server.StaticPrefix,
		StaticDir:    cfg.Server.StaticDir,
		AuthLimiter:  limiter,
		Metrics:      middleware.NewMetrics("lessons_api"),
		Logger:       logg,
	})

	srv := server.New(cfg.Server, router, logg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error().Err(err).Msg("Server stopped")
		}
	case <-ctx.Done():
		logg.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
