package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aidkit/internal/config"
	"aidkit/internal/database"
	"aidkit/internal/database/migration"
	handlers "aidkit/internal/http/handler"
	"aidkit/internal/http/middleware"
	"aidkit/internal/logging"
	"aidkit/internal/otel"
	"aidkit/internal/repository/sqldb"
	"aidkit/internal/service"
	"aidkit/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	logger := logging.New(cfg.Log, loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing_init_failed")
	}

	db, dialect, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("db_connect_failed")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, dialect, logger); err != nil {
		logger.Fatal().Err(err).Msg("db_migration_failed")
	}

	// Export storage is optional; a nil store disables POST /aidkits/:id/export
	objStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage_init_failed")
	}

	page := service.Pagination{ItemsPerPage: cfg.Pagination.ItemsPerPage, Limit: cfg.Pagination.Limit}

	// Initialize repositories and services
	producers := sqldb.NewProducers(db, dialect)
	categories := sqldb.NewCategories(db, dialect)
	medications := sqldb.NewMedications(db, dialect)
	aidkits := sqldb.NewAidKits(db, dialect, cfg.Pagination.ItemsPerPage)
	stocks := sqldb.NewStocks(db, dialect)

	svc := handlers.Services{
		Producers:   service.NewProducerService(producers, page),
		Categories:  service.NewCategoryService(categories, page),
		Medications: service.NewMedicationService(medications, page),
		AidKits:     service.NewAidKitService(aidkits, page),
		Stocks:      service.NewStockService(stocks, medications, page),
		Export:      service.NewExportService(aidkits, objStore, cfg.Storage.ExportURLTTL, page),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics_init_failed")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, db, svc, handlers.Options{
		Page:        page,
		OpenAPIPath: "openapi.yaml",
	})

	go func() {
		<-ctx.Done()
		logger.Info().Msg("server_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server_shutdown_failed")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("tracing_shutdown_failed")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().
		Str("addr", addr).
		Str("db_driver", dialect.Name()).
		Bool("exports_enabled", objStore != nil).
		Msg("server_start")

	if err := app.Listen(addr); err != nil {
		logger.Error().Err(err).Msg("server_failed")
		os.Exit(1)
	}
}
