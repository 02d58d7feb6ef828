package http

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cinepulse/internal/config"
)

// HealthHandler reports service liveness and data readiness.
type HealthHandler struct {
	paths   *config.Paths
	started time.Time
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(paths *config.Paths, version string) *HealthHandler {
	return &HealthHandler{
		paths:   paths,
		started: time.Now(),
		version: version,
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	r.Get("/ready", h.GetReadiness)
	return r
}

// GetHealth reports liveness.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	})
}

// GetReadiness reports whether the source dataset is present. A missing
// movies file means every analysis endpoint would return 404.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	_, err := os.Stat(h.paths.MoviesCSV())
	ready := err == nil

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "no_data"
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"status":     state,
		"movies_csv": h.paths.MoviesCSV(),
	})
}
