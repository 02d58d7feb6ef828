// Package app assembles the web server: config, logging, cache, dataset
// service, metrics, and router, with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"cinepulse/internal/config"
	"cinepulse/internal/infrastructure"
	"cinepulse/internal/services"
	"cinepulse/internal/store"
	transporthttp "cinepulse/internal/transport/http"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Application owns the long-lived server components.
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Server  *http.Server
	Dataset *services.DatasetService

	cache    *store.Cache
	registry *prometheus.Registry
}

// New builds the application from the given config file path (empty for
// defaults plus environment overrides).
func New(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.LogPath("web.log")
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	cache, err := store.Open(paths.CacheDB(), logger)
	if err != nil {
		logger.Warn("snapshot cache unavailable, running without it",
			slog.String("error", err.Error()))
		cache = nil
	}

	dataset := services.NewDatasetService(cfg, paths, cache, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := dataset.Metrics().Register(registry); err != nil {
		return nil, fmt.Errorf("register pipeline metrics: %w", err)
	}

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Config:   cfg,
		Paths:    paths,
		Provider: dataset,
		Logger:   logger,
		Registry: registry,
		Version:  Version,
	})

	app := &Application{
		Config:   cfg,
		Paths:    paths,
		Logger:   logger,
		Dataset:  dataset,
		cache:    cache,
		registry: registry,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
	return app, nil
}

// Run starts the server and blocks until an interrupt or a fatal server
// error.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Warm the dataset in the background so the first request does not pay
	// for the full pipeline.
	go func() {
		if _, err := a.Dataset.Dataset(context.Background()); err != nil {
			a.Logger.Warn("dataset warmup failed",
				slog.String("error", err.Error()))
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
		return a.Stop()
	}
}

// Stop shuts the server down within the configured timeout and closes the
// cache.
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := infrastructure.CloseLogger(); err != nil {
		errs = append(errs, fmt.Errorf("close logger: %w", err))
	}

	a.Logger.Info("server stopped")
	return errors.Join(errs...)
}
