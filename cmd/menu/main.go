package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qr-menu/internal/auth"
	"qr-menu/internal/cart"
	"qr-menu/internal/catalog"
	"qr-menu/internal/config"
	"qr-menu/internal/handler"
	"qr-menu/internal/ordering"
	"qr-menu/internal/router"
	"qr-menu/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "menu")
	logger.Info().Msg("starting qr-menu ordering service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := catalog.NewSeedLoader(ctx, cfg.S3.Enabled, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	dataset, err := catalog.LoadDataset(ctx, cfg.Catalog.SeedFiles, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog dataset: %w", err)
	}

	catalogService := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, dataset, logger)
	products := catalog.NewCache(catalogService, cfg.Catalog.RefreshInterval, logger)
	products.Start(ctx)
	defer products.Stop()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close session store")
		}
	}()

	gate := session.NewGate(store, cfg.Menu.TableCount, cfg.Menu.TableConfirmDelay, logger)

	authenticator, err := auth.New(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.SessionTTL, store, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	var orders ordering.OrderClient
	if cfg.Menu.OrderBackend == "demo" {
		logger.Warn().Msg("using the in-memory demo order backend")
		orders = ordering.NewDemoClient(cfg.Menu.EstimatedMinutes)
	} else {
		orders = ordering.NewHTTPClient(cfg.Catalog.BaseURL, cfg.Auth.APIKey, cfg.Catalog.Timeout, logger)
	}

	tracker := ordering.NewTracker(cfg.Menu.PreparingAfter, cfg.Menu.ServedAfter, logger)
	defer tracker.Stop()
	flow := ordering.NewFlow(store, gate, orders, tracker, logger)

	mux := router.NewMenu(
		handler.NewMenuHandler(catalogService, products, store, gate, logger),
		handler.NewCartHandler(products, store, gate, logger),
		handler.NewCheckoutHandler(flow, store, gate, logger),
		handler.NewAdminHandler(authenticator, orders, store, logger),
		cfg.Server.AllowedOrigins,
		logger,
	)

	address := cfg.Menu.Address(cfg.Server.Host)
	server := &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", address).
			Str("catalog", cfg.Catalog.BaseURL).
			Str("order_backend", cfg.Menu.OrderBackend).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newStore returns the Redis session store when enabled, memory otherwise.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.Store, error) {
	lang := cart.Language(cfg.Menu.DefaultLanguage)

	if !cfg.Redis.Enabled {
		logger.Warn().Msg("sessions are kept in memory and lost on restart")
		return session.NewMemoryStore(lang), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
	return session.NewRedisStore(client, cfg.Redis.StateTTL, cfg.Admin.SessionTTL, lang, logger), nil
}
