package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinepulse/internal/config"
	apperrors "cinepulse/internal/errors"
	"cinepulse/internal/store"
)

const moviesCSV = `id,title,budget,revenue,popularity,runtime,vote_average,vote_count,release_date,genres,production_companies,production_countries,belongs_to_collection
1,Hit,1000000,200000000,9.0,100,7.0,100,1999-06-01,"[{'name': 'Action'}]","[{'name': 'Big Studio'}]","[{'name': 'United States of America'}]",
2,Flop,50000000,1000000,1.0,90,5.0,10,1999-10-01,"[{'name': 'Drama'}]",,,
`

func testService(t *testing.T, withCache bool) (*DatasetService, *config.Paths) {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Paths = config.PathsConfig{
		DataDir:    dir,
		CacheDir:   filepath.Join(dir, "cache"),
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}

	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	var cache *store.Cache
	if withCache {
		cache, err = store.Open(paths.CacheDB(), nil)
		require.NoError(t, err)
		t.Cleanup(func() { cache.Close() })
	}

	return NewDatasetService(cfg, paths, cache, nil), paths
}

func writeMovies(t *testing.T, paths *config.Paths) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.MoviesCSV(), []byte(moviesCSV), 0644))
}

func TestDatasetBuildsFromSource(t *testing.T) {
	svc, paths := testService(t, false)
	writeMovies(t, paths)

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.False(t, ds.FromCache)
	require.Len(t, ds.Snapshot.Movies, 2)
	assert.Equal(t, 2, ds.Stats.Cleaned)

	hit := ds.Snapshot.Movies[0]
	assert.Equal(t, "Hit", hit.Title)
	assert.True(t, hit.IsBlockbuster)
	assert.Equal(t, "Action", hit.MainGenre)
}

func TestDatasetMemoized(t *testing.T) {
	svc, paths := testService(t, false)
	writeMovies(t, paths)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	second, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestDatasetServedFromCacheAcrossInstances(t *testing.T) {
	svc, paths := testService(t, true)
	writeMovies(t, paths)

	built, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, built.Snapshot.ID)

	// A fresh service over the same directories finds the cached snapshot.
	cache, err := store.Open(paths.CacheDB(), nil)
	require.NoError(t, err)
	defer cache.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	fresh := NewDatasetService(cfg, paths, cache, nil)

	ds, err := fresh.Dataset(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.FromCache)
	assert.Equal(t, built.Snapshot.ID, ds.Snapshot.ID)
	assert.Len(t, ds.Snapshot.Movies, 2)
}

func TestDatasetCacheInvalidatedByThresholdChange(t *testing.T) {
	svc, paths := testService(t, true)
	writeMovies(t, paths)

	built, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	cache, err := store.Open(paths.CacheDB(), nil)
	require.NoError(t, err)
	defer cache.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Analysis.ROIThreshold = 10.0
	fresh := NewDatasetService(cfg, paths, cache, nil)

	ds, err := fresh.Dataset(context.Background())
	require.NoError(t, err)
	assert.False(t, ds.FromCache)
	assert.NotEqual(t, built.Snapshot.ID, ds.Snapshot.ID)
}

func TestDatasetMissingSource(t *testing.T) {
	svc, _ := testService(t, true)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDataUnavailable))
}

func TestRefreshRebuildsAfterSourceChange(t *testing.T) {
	svc, paths := testService(t, true)
	writeMovies(t, paths)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Snapshot.Movies, 2)

	extended := moviesCSV + "3,Third,,,2.0,95,6.0,20,2000-01-01,,,,\n"
	require.NoError(t, os.WriteFile(paths.MoviesCSV(), []byte(extended), 0644))

	refreshed, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, refreshed.FromCache)
	assert.Len(t, refreshed.Snapshot.Movies, 3)
}

func TestPipelineMetricsRegister(t *testing.T) {
	m := NewPipelineMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	// Double registration is rejected by the registry.
	assert.Error(t, m.Register(reg))
}
