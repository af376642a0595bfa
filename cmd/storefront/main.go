package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/catalog"
	"github.com/matheusmosca/storefront/internal/config"
	"github.com/matheusmosca/storefront/internal/httpapi"
	"github.com/matheusmosca/storefront/internal/identity"
	"github.com/matheusmosca/storefront/internal/inventory"
	"github.com/matheusmosca/storefront/internal/orders"
	"github.com/matheusmosca/storefront/internal/platform/observability"
	"github.com/matheusmosca/storefront/internal/reports"
	"github.com/matheusmosca/storefront/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	shutdownOTel, err := observability.Setup(ctx, observability.Options{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Printf("OpenTelemetry partially initialized: %v", err)
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger, err := observability.NewLogger(observability.LoggerOptions{
		ServiceName:  cfg.ServiceName,
		Level:        cfg.LogLevel,
		Development:  !cfg.IsProduction(),
		ExportToOTel: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("❌ Storefront stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	// Initialize database
	opts := cfg.StorageOptions()
	dbPool, err := storage.InitDB(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := storage.Migrate(ctx, opts.DSN(), logger); err != nil {
		return err
	}

	// Initialize dependencies
	beginner := storage.NewPostgresBeginner(dbPool, cfg.LockTimeout)

	catalogService := catalog.NewCatalog(catalog.NewCatalogRepository(dbPool), logger)

	basketRepository := basket.NewBasketRepository(dbPool)
	basketStore := basket.NewStore(basketRepository, logger)

	adjuster := inventory.NewAdjuster(inventory.NewInventoryRepository(), logger)
	orderUseCase := orders.NewOrderUseCase(
		beginner,
		orders.NewOrderRepository(dbPool),
		basketRepository,
		adjuster,
		logger,
	)

	var reportCache reports.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("⚠️ Redis unavailable, reports served without cache", zap.Error(err))
		} else {
			reportCache = reports.NewRedisCache(client, cfg.Redis.ReportCacheTTL)
			logger.Info("✅ Report cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}
	reporter := reports.NewReporter(reports.NewReportRepository(dbPool), reportCache, logger)

	resolver := identity.NewHTTPResolver(cfg.AuthServiceURL, cfg.AuthTimeout, logger)

	handler := httpapi.NewHandler(catalogService, basketStore, orderUseCase, reporter, logger)
	router := httpapi.NewRouter(handler, resolver, cfg.ServiceName, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Storefront listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("⏳ Shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
