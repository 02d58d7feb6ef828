package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
)

func testConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		RevenueThreshold:      100_000_000,
		ROIThreshold:          2.5,
		MinGroupCount:         5,
		MinCorrelationSamples: 2,
		MaxCastCredits:        5,
	}
}

// movie builds a cleaned row with every numeric field unreported except the
// ones set by the mutator.
func movie(id int64, mutate func(*domain.Movie)) domain.Movie {
	m := domain.Movie{
		ID:          id,
		Title:       "m",
		Budget:      domain.Unreported(),
		Revenue:     domain.Unreported(),
		Runtime:     domain.Unreported(),
		Popularity:  domain.Unreported(),
		VoteAverage: domain.Unreported(),
		VoteCount:   domain.Unreported(),
		ROI:         domain.Unreported(),
	}
	if mutate != nil {
		mutate(&m)
	}
	return m
}

func TestSummarySkipsUnreported(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Budget = 100; m.Revenue = 300; m.ROI = 2 }),
		movie(2, func(m *domain.Movie) { m.Budget = 200 }),
		movie(3, nil),
	}

	got := New(testConfig()).Summary(movies)
	assert.Equal(t, 3, got.Movies)
	assert.Equal(t, 2, got.Budget.Count)
	assert.Equal(t, 1, got.Revenue.Count)
	assert.Equal(t, 1, got.ROI.Count)
	assert.Equal(t, 0, got.Runtime.Count)

	require.True(t, got.Budget.Mean.Defined())
	assert.InDelta(t, 150, float64(got.Budget.Mean), 1e-9)
	// A single sample has no spread.
	assert.False(t, got.Revenue.StdDev.Defined())
	assert.True(t, got.Budget.StdDev.Defined())
	// An empty sample has no statistics at all, only a zero count.
	assert.False(t, got.Runtime.Mean.Defined())
	assert.False(t, got.Runtime.Median.Defined())
}

func TestSummaryEmptyDataset(t *testing.T) {
	got := New(testConfig()).Summary(nil)
	assert.Equal(t, 0, got.Movies)
	assert.Equal(t, 0, got.Budget.Count)
	assert.False(t, got.Budget.Mean.Defined())
}

func TestOverview(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.IsBlockbuster = true; m.Revenue = 200_000_000 }),
		movie(2, nil),
		movie(3, nil),
		movie(4, nil),
	}

	got := New(testConfig()).Overview(movies)
	assert.Equal(t, 4, got.Movies)
	assert.Equal(t, 1, got.Blockbusters)
	require.True(t, got.BlockbusterShare.Defined())
	assert.InDelta(t, 0.25, float64(got.BlockbusterShare), 1e-9)
	assert.False(t, got.MedianBudget.Defined())

	empty := New(testConfig()).Overview(nil)
	assert.False(t, empty.BlockbusterShare.Defined())
}

func TestGroupByYear(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.ReleaseYear = 1999; m.Revenue = 100 }),
		movie(2, func(m *domain.Movie) { m.ReleaseYear = 1995; m.Revenue = 300; m.IsBlockbuster = true }),
		movie(3, func(m *domain.Movie) { m.ReleaseYear = 1999 }),
		movie(4, nil), // no release year, excluded
	}

	groups, err := New(testConfig()).GroupBy(movies, nil, domain.DimensionYear)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Ascending calendar order.
	assert.Equal(t, "1995", groups[0].Key)
	assert.Equal(t, "1999", groups[1].Key)

	g1995 := groups[0]
	assert.Equal(t, 1, g1995.Count)
	assert.Equal(t, 1, g1995.Blockbusters)
	require.True(t, g1995.BlockbusterRate.Defined())
	assert.InDelta(t, 1.0, float64(g1995.BlockbusterRate), 1e-9)
	assert.True(t, g1995.LowConfidence)

	g1999 := groups[1]
	assert.Equal(t, 2, g1999.Count)
	assert.Equal(t, 1, g1999.RevenueCount)
	require.True(t, g1999.MeanRevenue.Defined())
	assert.InDelta(t, 100, float64(g1999.MeanRevenue), 1e-9)
	assert.Equal(t, 0, g1999.ROICount)
	assert.False(t, g1999.MeanROI.Defined())

	// Group counts partition the rows with a known year.
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	assert.Equal(t, 3, total)
}

func TestGroupByMonthCalendarOrder(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.ReleaseMonth = time.December }),
		movie(2, func(m *domain.Movie) { m.ReleaseMonth = time.February }),
		movie(3, func(m *domain.Movie) { m.ReleaseMonth = time.July }),
	}

	groups, err := New(testConfig()).GroupBy(movies, nil, domain.DimensionMonth)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "February", groups[0].Key)
	assert.Equal(t, "July", groups[1].Key)
	assert.Equal(t, "December", groups[2].Key)
}

func TestGroupByEntityJoinsAssociations(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Revenue = 100 }),
		movie(2, func(m *domain.Movie) { m.Revenue = 500 }),
	}
	associations := []domain.Association{
		{MovieID: 1, Type: domain.EntityGenre, Name: "Action"},
		{MovieID: 1, Type: domain.EntityGenre, Name: "Comedy"},
		{MovieID: 2, Type: domain.EntityGenre, Name: "Action"},
		{MovieID: 2, Type: domain.EntityActor, Name: "Someone"}, // other type ignored
		{MovieID: 99, Type: domain.EntityGenre, Name: "Orphan"}, // no matching movie
	}

	groups, err := New(testConfig()).GroupBy(movies, associations, domain.DimensionGenre)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Descending mean revenue: Action (300) before Comedy (100).
	assert.Equal(t, "Action", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.InDelta(t, 300, float64(groups[0].MeanRevenue), 1e-9)
	assert.Equal(t, "Comedy", groups[1].Key)
	assert.Equal(t, 1, groups[1].Count)

	// A movie with two genres contributes to both groups.
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	assert.Equal(t, 3, total)
}

func TestGroupByEntityUndefinedMeansSortLast(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Revenue = 100 }),
		movie(2, nil),
	}
	associations := []domain.Association{
		{MovieID: 2, Type: domain.EntityDirector, Name: "Unknown Revenue"},
		{MovieID: 1, Type: domain.EntityDirector, Name: "Known Revenue"},
	}

	groups, err := New(testConfig()).GroupBy(movies, associations, domain.DimensionDirector)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Known Revenue", groups[0].Key)
	assert.Equal(t, "Unknown Revenue", groups[1].Key)
	assert.False(t, groups[1].MeanRevenue.Defined())
}

func TestGroupByFranchise(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.IsFranchise = true }),
		movie(2, nil),
		movie(3, nil),
	}

	groups, err := New(testConfig()).GroupBy(movies, nil, domain.DimensionFranchise)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Franchise", groups[0].Key)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, "Standalone", groups[1].Key)
	assert.Equal(t, 2, groups[1].Count)
}

func TestGroupByBudgetBand(t *testing.T) {
	movies := []domain.Movie{
		movie(1, func(m *domain.Movie) { m.Budget = 5_000_000 }),
		movie(2, func(m *domain.Movie) { m.Budget = 10_000_000 }), // lower bound of 10-40M
		movie(3, func(m *domain.Movie) { m.Budget = 99_999_999 }),
		movie(4, func(m *domain.Movie) { m.Budget = 300_000_000 }),
		movie(5, nil), // no reported budget, excluded
	}

	groups, err := New(testConfig()).GroupBy(movies, nil, domain.DimensionBudgetBand)
	require.NoError(t, err)
	require.Len(t, groups, 4)

	// Ascending band order.
	assert.Equal(t, "<10M", groups[0].Key)
	assert.Equal(t, "10-40M", groups[1].Key)
	assert.Equal(t, "40-100M", groups[2].Key)
	assert.Equal(t, "250M+", groups[3].Key)

	total := 0
	for _, g := range groups {
		total += g.Count
	}
	assert.Equal(t, 4, total)
}

func TestGroupByUnknownDimension(t *testing.T) {
	_, err := New(testConfig()).GroupBy(nil, nil, domain.Dimension("decade"))
	assert.Error(t, err)
}

func TestGroupByLowConfidenceFlag(t *testing.T) {
	var movies []domain.Movie
	for i := int64(1); i <= 6; i++ {
		movies = append(movies, movie(i, func(m *domain.Movie) { m.ReleaseYear = 2000 }))
	}
	movies = append(movies, movie(7, func(m *domain.Movie) { m.ReleaseYear = 2001 }))

	groups, err := New(testConfig()).GroupBy(movies, nil, domain.DimensionYear)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.False(t, groups[0].LowConfidence) // 2000 has 6 rows
	assert.True(t, groups[1].LowConfidence)  // 2001 has 1 row
}
