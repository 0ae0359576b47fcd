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

	"qr-menu/internal/catalog"
	"qr-menu/internal/config"
	"qr-menu/internal/database"
	"qr-menu/internal/events"
	"qr-menu/internal/handler"
	"qr-menu/internal/model"
	"qr-menu/internal/repository"
	"qr-menu/internal/router"
	"qr-menu/internal/service"

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

	logger := config.NewLogger(cfg.Logger, "api")
	logger.Info().Msg("starting qr-menu backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	if err := seedCatalogue(ctx, cfg, productRepo, logger); err != nil {
		return err
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing order events to kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, publisher, service.OrderSettings{
		TableCount:       cfg.Menu.TableCount,
		EstimatedMinutes: cfg.Menu.EstimatedMinutes,
	}, logger)

	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	tableHandler := handler.NewTableHandler(cfg.Menu.PublicURL, cfg.Menu.TableCount, logger)

	mux := router.New(
		productHandler,
		orderHandler,
		tableHandler,
		database.HealthCheck(pool, 2*time.Second),
		cfg.Auth.APIKey,
		cfg.Server.AllowedOrigins,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
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

// seedCatalogue upserts the products of the configured seed files. Without
// seed files the table is left as it is.
func seedCatalogue(ctx context.Context, cfg *config.Config, repo repository.ProductRepository, logger zerolog.Logger) error {
	if len(cfg.Catalog.SeedFiles) == 0 {
		logger.Info().Msg("no catalog seed files configured")
		return nil
	}

	loader := catalog.NewSeedLoader(ctx, cfg.S3.Enabled, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
	dataset, err := catalog.LoadDataset(ctx, cfg.Catalog.SeedFiles, loader, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog seed: %w", err)
	}

	products := make([]model.Product, len(dataset.Products))
	for i, dto := range dataset.Products {
		products[i] = dto.Normalize()
	}

	n, err := repo.Upsert(ctx, products)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	logger.Info().Int("products", n).Msg("catalog seeded")
	return nil
}
