package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinepulse/internal/analyze"
	"cinepulse/internal/config"
	"cinepulse/internal/domain"
	apierrors "cinepulse/internal/errors"
	"cinepulse/internal/services"
	"cinepulse/internal/store"
)

type fakeProvider struct {
	dataset *services.Dataset
	err     error
}

func (f *fakeProvider) Dataset(ctx context.Context) (*services.Dataset, error) {
	return f.dataset, f.err
}

func (f *fakeProvider) Refresh(ctx context.Context) (*services.Dataset, error) {
	return f.dataset, f.err
}

func testDataset() *services.Dataset {
	cfg := config.AnalysisConfig{
		RevenueThreshold:      100_000_000,
		ROIThreshold:          2.5,
		MinGroupCount:         5,
		MinCorrelationSamples: 2,
		MaxCastCredits:        5,
	}
	return &services.Dataset{
		Snapshot: store.Snapshot{
			ID: "snap-1",
			Movies: []domain.Movie{
				{
					ID: 1, Title: "Hit", Budget: 1_000_000, Revenue: 200_000_000,
					Runtime: 100, Popularity: 9, VoteAverage: 7, VoteCount: 100,
					ReleaseYear: 1999, ROI: 199, IsBlockbuster: true,
				},
				{
					ID: 2, Title: "Flop", Budget: 50_000_000, Revenue: 1_000_000,
					Runtime: 90, Popularity: 1, VoteAverage: 5, VoteCount: 10,
					ReleaseYear: 1999, ROI: -0.98,
				},
			},
			Associations: []domain.Association{
				{MovieID: 1, Type: domain.EntityGenre, Name: "Action"},
				{MovieID: 2, Type: domain.EntityGenre, Name: "Drama"},
			},
		},
		Analyzer: analyze.New(cfg),
	}
}

func testRouter(provider DatasetProvider) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewDatasetHandler(provider, logger, apierrors.NewErrorHandler(logger))
	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestGetOverview(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodGet, "/api/overview")
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Movies)
	assert.Equal(t, 1, body.Blockbusters)
	require.True(t, body.BlockbusterShare.Defined())
	assert.InDelta(t, 0.5, float64(body.BlockbusterShare), 1e-9)
}

func TestGetSummary(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.SummaryStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Movies)
	assert.Equal(t, 2, body.Budget.Count)
	assert.True(t, body.Budget.Mean.Defined())
}

func TestGetCorrelations(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodGet, "/api/correlations")
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.CorrelationMatrix
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"budget", "revenue", "popularity", "vote_average", "runtime"}, body.Fields)
	require.Len(t, body.Values, len(body.Fields))
}

func TestGetAggregates(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodGet, "/api/aggregates/genre")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Dimension string                  `json:"dimension"`
		Groups    []domain.GroupAggregate `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "genre", body.Dimension)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "Action", body.Groups[0].Key)
}

func TestGetAggregatesUnknownDimension(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodGet, "/api/aggregates/decade")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeValidation, body["type"])
}

func TestDatasetUnavailable(t *testing.T) {
	router := testRouter(&fakeProvider{
		err: apierrors.DataUnavailable("movies metadata file not found", nil),
	})
	w := doRequest(t, router, http.MethodGet, "/api/overview")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeDataUnavailable, body["type"])
}

func TestGetStats(t *testing.T) {
	ds := testDataset()
	ds.FromCache = true
	router := testRouter(&fakeProvider{dataset: ds})

	w := doRequest(t, router, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "snap-1", body.SnapshotID)
	assert.True(t, body.FromCache)
	assert.Equal(t, 2, body.Movies)
}

func TestRefresh(t *testing.T) {
	router := testRouter(&fakeProvider{dataset: testDataset()})
	w := doRequest(t, router, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, w.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "snap-1", body.SnapshotID)
}
