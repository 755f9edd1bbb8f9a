package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/events"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/cache"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/mysql"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/secrets"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize OpenTelemetry
	var (
		telem *telemetry.Telemetry
		err   error
	)
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer := telem.TracerProvider.Tracer(cfg.OTLP.ServiceName)
	meter := telem.MeterProvider.Meter(cfg.OTLP.ServiceName)
	logger := telem.Logger

	logger.Info("Starting Product Catalog API",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("events", cfg.Events.Driver),
	)

	repo, closeRepo, err := newRepository(ctx, cfg, tracer, logger)
	if err != nil {
		logger.Error("Failed to initialize repository", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepo()

	if cfg.Cache.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB)
		if err != nil {
			logger.Error("Failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		repo = cache.NewProductRepository(repo, rdb, cfg.Cache.TTL, tracer, logger)
		logger.Info("Product cache enabled", slog.String("addr", cfg.Cache.RedisAddr))
	}

	publisher, err := events.NewPublisher(&cfg.Events, cfg.OTLP.ServiceName, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productService := service.NewProductService(repo, publisher, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	server := http.NewServer(&cfg.Server, &cfg.RateLimit, productHandler, telem.MeterProvider, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", slog.String("error", err.Error()))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Error closing event publisher", slog.String("error", err.Error()))
		}
	}
	if err := telem.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}

	logger.Info("Server stopped")
}

// newRepository builds the configured storage backend and returns a close func for it
func newRepository(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, func(), error) {
	if cfg.Storage.Driver == "memory" {
		return memory.NewProductRepository(tracer, logger), func() {}, nil
	}

	dsn, err := resolveDSN(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Storage.Driver {
	case "mysql":
		db, err := mysql.Open(&cfg.Storage, dsn, logger)
		if err != nil {
			return nil, nil, err
		}
		repo := mysql.NewProductRepository(db, tracer, logger)
		if cfg.Storage.AutoMigrate {
			if err := repo.AutoMigrate(ctx); err != nil {
				return nil, nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repo, closeDB, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, &cfg.Storage, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewProductRepository(pool, tracer, logger)
		if cfg.Storage.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return repo, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// resolveDSN prefers a Secrets Manager entry over the plain DATABASE_URL
func resolveDSN(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Storage.DSNSecretID == "" {
		if cfg.Storage.DSN == "" {
			return "", fmt.Errorf("DATABASE_URL is required for storage driver %q", cfg.Storage.Driver)
		}
		return cfg.Storage.DSN, nil
	}

	resolver, err := secrets.NewResolver(ctx, cfg.AWSRegion)
	if err != nil {
		return "", err
	}
	return resolver.DSN(ctx, cfg.Storage.DSNSecretID)
}
