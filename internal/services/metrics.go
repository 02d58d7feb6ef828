package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"cinepulse/internal/preprocess"
)

// PipelineMetrics tracks dataset pipeline activity. Metrics live on the
// service rather than as package globals so tests can build isolated
// registries.
type PipelineMetrics struct {
	rawRows         prometheus.Counter
	cleanedRows     prometheus.Counter
	duplicates      prometheus.Counter
	malformedFields prometheus.Counter
	associations    prometheus.Counter
	cacheHits       prometheus.Counter
	builds          prometheus.Counter
}

// NewPipelineMetrics creates unregistered pipeline counters.
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		rawRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_raw_rows_total",
			Help: "Total raw movie rows read from source files",
		}),
		cleanedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_cleaned_rows_total",
			Help: "Total movie rows surviving cleaning",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_duplicate_rows_total",
			Help: "Total duplicate movie rows dropped during cleaning",
		}),
		malformedFields: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_malformed_fields_total",
			Help: "Total malformed field values replaced with unreported markers",
		}),
		associations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_associations_total",
			Help: "Total movie-entity association rows produced",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_cache_hits_total",
			Help: "Total dataset builds served from the snapshot cache",
		}),
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinepulse_pipeline_builds_total",
			Help: "Total dataset builds run from raw source files",
		}),
	}
}

// Register adds all pipeline collectors to the given registry.
func (m *PipelineMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.rawRows, m.cleanedRows, m.duplicates,
		m.malformedFields, m.associations, m.cacheHits, m.builds,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Observe records the outcome of one cleaning pass.
func (m *PipelineMetrics) Observe(stats preprocess.Stats) {
	m.builds.Inc()
	m.rawRows.Add(float64(stats.RawRows))
	m.cleanedRows.Add(float64(stats.Cleaned))
	m.duplicates.Add(float64(stats.Duplicates))
	m.malformedFields.Add(float64(stats.MalformedFields))
	m.associations.Add(float64(stats.Associations))
}

// ObserveCacheHit records a dataset build satisfied by the cache.
func (m *PipelineMetrics) ObserveCacheHit() {
	m.cacheHits.Inc()
}
