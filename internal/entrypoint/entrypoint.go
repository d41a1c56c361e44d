// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partbridge/partbridge/internal/audit"
	"github.com/partbridge/partbridge/internal/config"
	"github.com/partbridge/partbridge/internal/database"
	"github.com/partbridge/partbridge/internal/database/runs"
	http_controllers "github.com/partbridge/partbridge/internal/http"
	"github.com/partbridge/partbridge/internal/importer"
	"github.com/partbridge/partbridge/internal/inventree"
	"github.com/partbridge/partbridge/internal/logging"
	"github.com/partbridge/partbridge/internal/scheduler"
	"github.com/partbridge/partbridge/internal/suppliers"
	"github.com/partbridge/partbridge/internal/suppliers/digikey"
	"github.com/partbridge/partbridge/internal/suppliers/mouser"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// BuildRegistry assembles the supplier adapters from configuration. Adapters
// with missing credentials are still registered: they surface a
// configuration error on use, which operators must be able to tell apart
// from an outage.
func BuildRegistry(cfg *config.Config) *suppliers.Registry {
	registry := suppliers.NewRegistry()

	registry.Register(mouser.NewClient(mouser.Config{
		APIKey:          cfg.Mouser.APIKey,
		CompanyID:       cfg.Mouser.CompanyID,
		Locale:          cfg.Mouser.Locale,
		DefaultCurrency: cfg.Importer.DefaultCurrency,
		SearchURL:       cfg.Mouser.SearchURL,
		Timeout:         time.Duration(cfg.Importer.TimeoutInSeconds) * time.Second,
	}))

	tokens := digikey.NewTokenSource(
		cfg.DigiKey.ClientID,
		cfg.DigiKey.ClientSecret,
		cfg.DigiKey.TokenURL,
		time.Duration(cfg.Importer.TimeoutInSeconds)*time.Second,
	)
	registry.Register(digikey.NewClient(digikey.Config{
		ClientID:          cfg.DigiKey.ClientID,
		ClientSecret:      cfg.DigiKey.ClientSecret,
		CompanyID:         cfg.DigiKey.CompanyID,
		DefaultCurrency:   cfg.Importer.DefaultCurrency,
		TokenURL:          cfg.DigiKey.TokenURL,
		ProductDetailsURL: cfg.DigiKey.ProductDetailsURL,
		Timeout:           time.Duration(cfg.Importer.TimeoutInSeconds) * time.Second,
	}, tokens))

	return registry
}

// Run wires all components and serves until interrupted.
func Run(cfg *config.Config, version string) {
	log, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting partbridge", zap.String("version", version))

	if cfg.Mouser.APIKey == "" {
		log.Warn("MOUSER_API_KEY is not set; Mouser lookups will fail with a configuration error")
	}
	if cfg.DigiKey.ClientID == "" || cfg.DigiKey.ClientSecret == "" {
		log.Warn("Digi-Key credentials are not set; Digi-Key lookups will fail with a configuration error")
	}

	destination, err := inventree.NewClient(
		cfg.InvenTree.BaseURL,
		cfg.InvenTree.Token,
		time.Duration(cfg.InvenTree.TimeoutInSeconds)*time.Second,
	)
	if err != nil {
		log.Fatal("InvenTree configuration is incomplete", zap.Error(err))
	}

	var (
		db             *database.Database
		runsRepository *runs.Repository
		auditService   *audit.Service
	)
	if cfg.Audit.Enabled {
		db, err = database.NewDatabase(cfg.Database.Path)
		if err != nil {
			log.Fatal("failed to open audit database", zap.Error(err))
		}
		runsRepository = runs.NewRepository(db.DB)
		auditService = audit.NewService(runsRepository, log)
	}

	registry := BuildRegistry(cfg)
	previewBuilder := importer.NewPreviewBuilder(registry, destination, cfg.Importer.DefaultCurrency)
	writer := importer.NewWriter(destination, cfg.InvenTree.AutoCreateCategories, log)
	pipeline := importer.NewPipeline(previewBuilder, writer, auditService, log)

	cleanup := scheduler.NewAuditCleanupScheduler(runsRepository, cfg.Audit.RetentionDays, cfg.Audit.CleanupSchedule, log)
	if err := cleanup.Start(); err != nil {
		log.Fatal("failed to start audit cleanup scheduler", zap.Error(err))
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Pipeline:        pipeline,
		Runs:            runsRepository,
		DB:              db,
		Version:         version,
		DefaultCurrency: cfg.Importer.DefaultCurrency,
		DefaultCountry:  cfg.Importer.DefaultCountry,
	})

	Serve(router, cfg, log, func(ctx context.Context) {
		cleanup.Stop()
		if db != nil {
			if err := db.Close(); err != nil {
				log.Error("failed to close audit database", zap.Error(err))
			}
		}
	})
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}

	log.Info("server exiting")
}
