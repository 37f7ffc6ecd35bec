package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/insightdelivered/finance-tracker/internal/api"
	"github.com/insightdelivered/finance-tracker/internal/auth"
	"github.com/insightdelivered/finance-tracker/internal/config"
	"github.com/insightdelivered/finance-tracker/internal/extractor"
	"github.com/insightdelivered/finance-tracker/internal/store"
)

func runMigrate(cfg *config.Config, logger *slog.Logger) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	ctx := context.Background()

	pool, err := store.Open(ctx, store.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns}, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return store.Migrate(ctx, pool, logger)
}

func runServer(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !extractor.IsOCRAvailable() {
		logger.Warn("tesseract not found, image receipts will be rejected")
	}

	opts := []api.Option{api.WithLogger(logger)}
	if cfg.DatabaseURL != "" {
		pool, err := store.Open(ctx, store.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns}, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := store.Migrate(ctx, pool, logger); err != nil {
			return err
		}
		opts = append(opts, api.WithStore(store.New(pool, logger), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL())))
	} else {
		logger.Warn("DATABASE_URL not set, auth and transaction routes are disabled")
	}

	srv := api.NewServer(api.Config{
		Version:            version,
		StaticDir:          cfg.StaticDir,
		UploadLimit:        cfg.UploadLimit(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.AllowedOrigins(),
	}, extractor.New(cfg.OCRLanguage), opts...)
	app := srv.App()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "version", version)
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
