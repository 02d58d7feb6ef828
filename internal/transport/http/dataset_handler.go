// Package http exposes the analysis results over a JSON API with RFC 7807
// error responses.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"cinepulse/internal/domain"
	apierrors "cinepulse/internal/errors"
	"cinepulse/internal/preprocess"
	"cinepulse/internal/services"
)

// DatasetProvider is the service surface the handlers need. Satisfied by
// services.DatasetService.
type DatasetProvider interface {
	Dataset(ctx context.Context) (*services.Dataset, error)
	Refresh(ctx context.Context) (*services.Dataset, error)
}

// DatasetHandler serves the analysis endpoints.
type DatasetHandler struct {
	provider     DatasetProvider
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler.
func NewDatasetHandler(provider DatasetProvider, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		provider:     provider,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset API routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/summary", h.GetSummary)
	r.Get("/correlations", h.GetCorrelations)
	r.Get("/stats", h.GetStats)
	r.Post("/refresh", h.Refresh)

	r.Route("/aggregates/{dimension}", func(r chi.Router) {
		r.Use(h.DimensionCtx)
		r.Get("/", h.GetAggregates)
	})

	return r
}

// DimensionCtx validates the dimension parameter before the handler runs.
func (h *DatasetHandler) DimensionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dim := domain.Dimension(chi.URLParam(r, "dimension"))
		if !dim.Valid() {
			h.errorHandler.HandleError(w, r,
				apierrors.Validation("dimension", "unknown grouping dimension"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetOverview returns the headline dataset numbers.
func (h *DatasetHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ds, err := h.provider.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ds.Analyzer.Overview(ds.Snapshot.Movies))
}

// GetSummary returns per-field descriptive statistics.
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ds, err := h.provider.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ds.Analyzer.Summary(ds.Snapshot.Movies))
}

// GetCorrelations returns the pairwise correlation matrix.
func (h *DatasetHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	ds, err := h.provider.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ds.Analyzer.Correlations(ds.Snapshot.Movies))
}

// GetAggregates returns the aggregate table for one grouping dimension.
func (h *DatasetHandler) GetAggregates(w http.ResponseWriter, r *http.Request) {
	dim := domain.Dimension(chi.URLParam(r, "dimension"))

	ds, err := h.provider.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	groups, err := ds.Analyzer.GroupBy(ds.Snapshot.Movies, ds.Snapshot.Associations, dim)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"dimension": dim,
		"groups":    groups,
	})
}

// statsResponse reports pipeline provenance alongside cleaning counters.
type statsResponse struct {
	SnapshotID string           `json:"snapshot_id"`
	FromCache  bool             `json:"from_cache"`
	Movies     int              `json:"movies"`
	Stats      preprocess.Stats `json:"stats"`
}

// GetStats returns cleaning statistics for the current snapshot. Counters are
// zero when the snapshot was served from cache without a cleaning pass.
func (h *DatasetHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ds, err := h.provider.Dataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, statsResponse{
		SnapshotID: ds.Snapshot.ID,
		FromCache:  ds.FromCache,
		Movies:     len(ds.Snapshot.Movies),
		Stats:      ds.Stats,
	})
}

// Refresh rebuilds the dataset from disk and returns the new snapshot id.
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ds, err := h.provider.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "dataset refreshed",
		slog.String("snapshot_id", ds.Snapshot.ID),
		slog.Bool("from_cache", ds.FromCache))
	render.JSON(w, r, statsResponse{
		SnapshotID: ds.Snapshot.ID,
		FromCache:  ds.FromCache,
		Movies:     len(ds.Snapshot.Movies),
		Stats:      ds.Stats,
	})
}
