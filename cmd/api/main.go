package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/apex-admissions/admission_api/internal/config"
	"github.com/apex-admissions/admission_api/internal/infra"
	"github.com/apex-admissions/admission_api/internal/logging"
	"github.com/apex-admissions/admission_api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()

	var db *pgxpool.Pool
	switch pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL); {
	case errors.Is(err, infra.ErrNotConfigured):
		logger.Info("DATABASE_URL not set; submissions kept in memory")
	case err != nil:
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	default:
		db = pool
		defer db.Close()
	}

	var cache *redis.Client
	switch client, err := infra.NewRedisClient(ctx, cfg.RedisURL); {
	case errors.Is(err, infra.ErrNotConfigured):
		logger.Info("REDIS_URL not set; idempotency keys disabled")
	case err != nil:
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	default:
		cache = client
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	srv, err := server.New(cfg, db, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()
	logger.Info("server listening", "addr", cfg.Address(), "env", cfg.AppEnv)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
