package analyze

import (
	"gonum.org/v1/gonum/stat"

	"cinepulse/internal/domain"
)

// correlationFields names the numeric fields of the correlation matrix in
// their fixed order.
var correlationFields = []struct {
	name  string
	value func(domain.Movie) float64
}{
	{"budget", func(m domain.Movie) float64 { return m.Budget }},
	{"revenue", func(m domain.Movie) float64 { return m.Revenue }},
	{"popularity", func(m domain.Movie) float64 { return m.Popularity }},
	{"vote_average", func(m domain.Movie) float64 { return m.VoteAverage }},
	{"runtime", func(m domain.Movie) float64 { return m.Runtime }},
}

// Correlations computes the pairwise Pearson correlation matrix over the
// numeric movie fields. Each pair uses only rows where both fields are
// reported; pairs with fewer than the configured minimum sample count are
// null rather than a spurious value. The matrix is symmetric and its
// diagonal is 1 wherever the field has enough reported rows.
func (a *Analyzer) Correlations(movies []domain.Movie) domain.CorrelationMatrix {
	n := len(correlationFields)
	matrix := domain.CorrelationMatrix{
		Fields:  make([]string, n),
		Values:  make([][]domain.NullFloat, n),
		Samples: make([][]int, n),
	}
	for i, f := range correlationFields {
		matrix.Fields[i] = f.name
		matrix.Values[i] = make([]domain.NullFloat, n)
		matrix.Samples[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			value, samples := a.pairCorrelation(movies, correlationFields[i].value, correlationFields[j].value, i == j)
			matrix.Values[i][j] = value
			matrix.Values[j][i] = value
			matrix.Samples[i][j] = samples
			matrix.Samples[j][i] = samples
		}
	}
	return matrix
}

// pairCorrelation computes one cell over pairwise-complete observations.
func (a *Analyzer) pairCorrelation(movies []domain.Movie, fx, fy func(domain.Movie) float64, diagonal bool) (domain.NullFloat, int) {
	var xs, ys []float64
	for _, m := range movies {
		x, y := fx(m), fy(m)
		if domain.Reported(x) && domain.Reported(y) {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	if len(xs) < a.cfg.MinCorrelationSamples {
		return domain.Null(), len(xs)
	}
	if diagonal {
		return domain.NullFloat(1), len(xs)
	}

	r := stat.Correlation(xs, ys, nil)
	if !domain.Reported(r) {
		// Zero variance in either field leaves the coefficient undefined.
		return domain.Null(), len(xs)
	}
	return domain.NullFloat(r), len(xs)
}
