// Package analyze provides pure query functions over the cleaned movie table
// and association relation. Every query recomputes from its inputs; nothing
// here holds state between calls.
package analyze

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
)

// Analyzer evaluates aggregate queries against a cleaned dataset snapshot.
type Analyzer struct {
	cfg config.AnalysisConfig
}

// New creates an Analyzer with the given thresholds.
func New(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Summary computes the dataset-level descriptive statistics. Each statistic
// is computed only over rows where the field is reported, with the reported
// count surfaced so consumers can judge reliability.
func (a *Analyzer) Summary(movies []domain.Movie) domain.SummaryStats {
	return domain.SummaryStats{
		Movies:  len(movies),
		Budget:  describe(collect(movies, func(m domain.Movie) float64 { return m.Budget })),
		Revenue: describe(collect(movies, func(m domain.Movie) float64 { return m.Revenue })),
		ROI:     describe(collect(movies, func(m domain.Movie) float64 { return m.ROI })),
		Runtime: describe(collect(movies, func(m domain.Movie) float64 { return m.Runtime })),
	}
}

// Overview computes the headline dashboard numbers.
func (a *Analyzer) Overview(movies []domain.Movie) domain.Overview {
	blockbusters := 0
	for _, m := range movies {
		if m.IsBlockbuster {
			blockbusters++
		}
	}

	share := domain.Null()
	if len(movies) > 0 {
		share = domain.NullFloat(float64(blockbusters) / float64(len(movies)))
	}

	return domain.Overview{
		Movies:           len(movies),
		Blockbusters:     blockbusters,
		BlockbusterShare: share,
		MedianBudget:     median(collect(movies, func(m domain.Movie) float64 { return m.Budget })),
		MedianRevenue:    median(collect(movies, func(m domain.Movie) float64 { return m.Revenue })),
		MedianROI:        median(collect(movies, func(m domain.Movie) float64 { return m.ROI })),
		MeanPopularity:   mean(collect(movies, func(m domain.Movie) float64 { return m.Popularity })),
	}
}

// collect extracts the reported values of one field.
func collect(movies []domain.Movie, field func(domain.Movie) float64) []float64 {
	values := make([]float64, 0, len(movies))
	for _, m := range movies {
		if v := field(m); domain.Reported(v) {
			values = append(values, v)
		}
	}
	return values
}

// describe computes count/mean/median/std over reported values. Statistics
// that the sample cannot support come back null, never zero.
func describe(values []float64) domain.Stat {
	s := domain.Stat{
		Count:  len(values),
		Mean:   mean(values),
		Median: median(values),
		StdDev: domain.Null(),
	}
	if len(values) >= 2 {
		s.StdDev = domain.NullFloat(stat.StdDev(values, nil))
	}
	return s
}

func mean(values []float64) domain.NullFloat {
	if len(values) == 0 {
		return domain.Null()
	}
	return domain.NullFloat(stat.Mean(values, nil))
}

func median(values []float64) domain.NullFloat {
	if len(values) == 0 {
		return domain.Null()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return domain.NullFloat(stat.Quantile(0.5, stat.Empirical, sorted, nil))
}

// ratio returns num/den as a NullFloat, null when den is zero.
func ratio(num, den int) domain.NullFloat {
	if den == 0 {
		return domain.Null()
	}
	return domain.NullFloat(float64(num) / float64(den))
}

// nanLast orders two floats descending with NaN sorted to the end.
func nanLast(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}
