// Package services coordinates loading, preprocessing, caching and analysis
// behind a stable API for the HTTP transport and the CLI.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"cinepulse/internal/analyze"
	"cinepulse/internal/config"
	"cinepulse/internal/loader"
	"cinepulse/internal/preprocess"
	"cinepulse/internal/store"
)

// Dataset is an immutable view of one cleaned dataset together with the
// analyzer bound to it. It is shared between concurrent readers and must not
// be mutated after construction.
type Dataset struct {
	Snapshot store.Snapshot
	Stats    preprocess.Stats
	Analyzer *analyze.Analyzer
	// FromCache reports whether the snapshot was served from the SQLite
	// cache rather than rebuilt from the raw CSV files.
	FromCache bool
}

// DatasetService owns the load -> clean -> cache pipeline. Concurrent callers
// asking for the same snapshot share a single pipeline run.
type DatasetService struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	loader *loader.Loader
	prep   *preprocess.Preprocessor
	cache  *store.Cache

	group   singleflight.Group
	mu      sync.RWMutex
	current *Dataset
	metrics *PipelineMetrics
}

// NewDatasetService wires the full pipeline. cache may be nil to disable
// snapshot caching.
func NewDatasetService(cfg *config.Config, paths *config.Paths, cache *store.Cache, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("dataset service initialized",
		slog.String("data_dir", paths.DataDir),
		slog.String("cache_dir", paths.CacheDir),
	)
	return &DatasetService{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		loader:  loader.New(paths, logger),
		prep:    preprocess.New(cfg.Analysis, logger),
		cache:   cache,
		metrics: NewPipelineMetrics(),
	}
}

// Metrics exposes the pipeline counters for registration.
func (s *DatasetService) Metrics() *PipelineMetrics {
	return s.metrics
}

// Dataset returns the current cleaned dataset, building it on first use.
// Subsequent calls return the memoized dataset until Refresh is called.
func (s *DatasetService) Dataset(ctx context.Context) (*Dataset, error) {
	s.mu.RLock()
	ds := s.current
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}
	return s.build(ctx)
}

// Refresh discards the memoized dataset and rebuilds it from disk. The
// SQLite cache still applies, so a refresh with unchanged inputs is cheap.
func (s *DatasetService) Refresh(ctx context.Context) (*Dataset, error) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.build(ctx)
}

func (s *DatasetService) build(ctx context.Context) (*Dataset, error) {
	v, err, shared := s.group.Do("dataset", func() (any, error) {
		return s.buildLocked(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "dataset build shared with concurrent caller")
	}
	return v.(*Dataset), nil
}

func (s *DatasetService) buildLocked(ctx context.Context) (*Dataset, error) {
	configHash := s.cfg.Analysis.Hash()

	fingerprint, err := loader.Fingerprint(s.paths.MoviesCSV(), s.paths.CreditsCSV())
	if err != nil {
		return nil, fmt.Errorf("fingerprint source files: %w", err)
	}

	if ds, ok := s.loadCached(ctx, fingerprint, configHash); ok {
		s.install(ds)
		return ds, nil
	}

	raw, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	movies, associations, stats := s.prep.Clean(raw.Movies, raw.Credits)
	s.metrics.Observe(stats)

	snap := store.Snapshot{
		Fingerprint:  raw.Fingerprint,
		ConfigHash:   configHash,
		Movies:       movies,
		Associations: associations,
	}
	if s.cache != nil {
		saved, err := s.cache.Save(ctx, snap)
		if err != nil {
			// The dataset is already built, so a cache write failure
			// only costs the next run its warm start.
			s.logger.WarnContext(ctx, "failed to cache snapshot",
				slog.String("error", err.Error()))
		} else {
			snap = saved
		}
	}

	ds := &Dataset{
		Snapshot: snap,
		Stats:    stats,
		Analyzer: analyze.New(s.cfg.Analysis),
	}
	s.install(ds)
	return ds, nil
}

func (s *DatasetService) loadCached(ctx context.Context, fingerprint, configHash string) (*Dataset, bool) {
	if s.cache == nil {
		return nil, false
	}
	snap, ok, err := s.cache.Load(ctx, fingerprint, configHash)
	if err != nil {
		s.logger.WarnContext(ctx, "cache load failed, rebuilding from source",
			slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	// A cached snapshot can outlive its source files. Serve it only while
	// the movies file is still present so a removed dataset surfaces as
	// data unavailable instead of silently serving stale results.
	if _, err := os.Stat(s.paths.MoviesCSV()); err != nil {
		return nil, false
	}
	s.logger.InfoContext(ctx, "serving dataset from cache",
		slog.String("snapshot_id", snap.ID),
		slog.Int("movies", len(snap.Movies)),
	)
	s.metrics.ObserveCacheHit()
	return &Dataset{
		Snapshot:  snap,
		Analyzer:  analyze.New(s.cfg.Analysis),
		FromCache: true,
	}, true
}

func (s *DatasetService) install(ds *Dataset) {
	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
}
