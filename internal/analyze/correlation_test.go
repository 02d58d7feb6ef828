package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinepulse/internal/domain"
)

func TestCorrelationsSymmetricWithUnitDiagonal(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Budget = 10; m.Revenue = 20; m.Popularity = 1; m.VoteAverage = 6; m.Runtime = 90 }),
		movie(2, func(m *domain.Movie) { m.Budget = 20; m.Revenue = 45; m.Popularity = 3; m.VoteAverage = 7; m.Runtime = 100 }),
		movie(3, func(m *domain.Movie) { m.Budget = 30; m.Revenue = 58; m.Popularity = 2; m.VoteAverage = 8; m.Runtime = 110 }),
	}

	matrix := New(testConfig()).Correlations(movies)
	require.Equal(t, []string{"budget", "revenue", "popularity", "vote_average", "runtime"}, matrix.Fields)

	n := len(matrix.Fields)
	for i := 0; i < n; i++ {
		require.True(t, matrix.Values[i][i].Defined())
		assert.InDelta(t, 1.0, float64(matrix.Values[i][i]), 1e-12, "diagonal %s", matrix.Fields[i])
		for j := 0; j < n; j++ {
			assert.Equal(t, matrix.Values[i][j], matrix.Values[j][i])
			assert.Equal(t, matrix.Samples[i][j], matrix.Samples[j][i])
			if matrix.Values[i][j].Defined() {
				v := float64(matrix.Values[i][j])
				assert.GreaterOrEqual(t, v, -1.0-1e-12)
				assert.LessOrEqual(t, v, 1.0+1e-12)
			}
		}
	}
}

func TestCorrelationsPairwiseComplete(t *testing.T) {
	// Budget and revenue overlap on only two rows; runtime is reported on
	// a single row.
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Budget = 10; m.Revenue = 20 }),
		movie(2, func(m *domain.Movie) { m.Budget = 20; m.Revenue = 50 }),
		movie(3, func(m *domain.Movie) { m.Budget = 30; m.Runtime = 120 }),
	}

	matrix := New(testConfig()).Correlations(movies)
	idx := fieldIndex(t, matrix, "budget")
	rev := fieldIndex(t, matrix, "revenue")
	run := fieldIndex(t, matrix, "runtime")

	assert.Equal(t, 2, matrix.Samples[idx][rev])
	assert.True(t, matrix.Values[idx][rev].Defined())

	// One overlapping row is below the minimum sample count.
	assert.Equal(t, 1, matrix.Samples[idx][run])
	assert.False(t, matrix.Values[idx][run].Defined())

	// Runtime only has one reported row, so even its diagonal is undefined.
	assert.Equal(t, 1, matrix.Samples[run][run])
	assert.False(t, matrix.Values[run][run].Defined())
}

func TestCorrelationsZeroVarianceUndefined(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Budget = 10; m.Revenue = 20 }),
		movie(2, func(m *domain.Movie) { m.Budget = 10; m.Revenue = 50 }),
		movie(3, func(m *domain.Movie) { m.Budget = 10; m.Revenue = 30 }),
	}

	matrix := New(testConfig()).Correlations(movies)
	idx := fieldIndex(t, matrix, "budget")
	rev := fieldIndex(t, matrix, "revenue")

	assert.Equal(t, 3, matrix.Samples[idx][rev])
	assert.False(t, matrix.Values[idx][rev].Defined())
}

func TestCorrelationsEmptyDataset(t *testing.T) {
	matrix := New(testConfig()).Correlations(nil)
	for i := range matrix.Fields {
		for j := range matrix.Fields {
			assert.False(t, matrix.Values[i][j].Defined())
			assert.Equal(t, 0, matrix.Samples[i][j])
		}
	}
}

func fieldIndex(t *testing.T, matrix domain.CorrelationMatrix, name string) int {
	t.Helper()
	for i, f := range matrix.Fields {
		if f == name {
			return i
		}
	}
	t.Fatalf("field %q not in matrix", name)
	return -1
}
