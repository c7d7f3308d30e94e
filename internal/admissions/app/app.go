package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/scl-platform/ssobridge/internal/admissions/http"
	"github.com/scl-platform/ssobridge/internal/admissions/service"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/internal/admissions/store/drivers/sqlite"
	"github.com/scl-platform/ssobridge/pkg/cryptox"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the admissions-side service: token issuer,
// verifier, user directory and the HTTP surface over them.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	metrics *metricsx.Collector

	issuerService       *service.IssuerService
	verifierService     *service.VerifierService
	directoryService    *service.DirectoryService
	seedService         *service.SeedService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "admissions",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	app.metrics = metricsx.NewCollector(registry)

	app.initServices()
	app.initHTTP(registry)

	if err := app.seedService.Seed(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed directory: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("admissions service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the server, sweeper, and database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down admissions service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admissions service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.issuerService = &service.IssuerService{
		Store:        app.db,
		LMSBaseURL:   app.cfg.LMSBaseURL,
		CallbackPath: app.cfg.CallbackPath,
		Metrics:      app.metrics,
	}
	app.verifierService = &service.VerifierService{
		Store:    app.db,
		Secret:   app.cfg.SSOSecret,
		TokenTTL: app.cfg.TokenTTL,
		Metrics:  app.metrics,
	}
	app.directoryService = &service.DirectoryService{Store: app.db}
	app.seedService = &service.SeedService{Store: app.db, Logger: app.logger}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.TokenTTL,
	)
}

func (app *Application) initHTTP(registry *prometheus.Registry) {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger, app.metrics, registry)
	router.IssuerService = app.issuerService
	router.VerifierService = app.verifierService
	router.DirectoryService = app.directoryService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
