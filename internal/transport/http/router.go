package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinepulse/internal/config"
	apierrors "cinepulse/internal/errors"
	"cinepulse/internal/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Config   *config.Config
	Paths    *config.Paths
	Provider DatasetProvider
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Version  string
}

// NewRouter assembles the full middleware chain and API surface.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))

	if rl := deps.Config.Server.RateLimit; rl.Enabled {
		limiter := middleware.NewRateLimiter(rl.RPS, rl.Burst, logger)
		r.Use(limiter.Handler)
	}

	r.Route("/api", func(r chi.Router) {
		datasetHandler := NewDatasetHandler(deps.Provider, logger, errorHandler)
		r.Mount("/", datasetHandler.Routes())
	})

	healthHandler := NewHealthHandler(deps.Paths, deps.Version)
	r.Mount("/healthz", healthHandler.Routes())

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			deps.Registry, promhttp.HandlerOpts{}))
	}

	r.NotFound(errorHandler.NotFound)
	return r
}
