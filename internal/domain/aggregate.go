package domain

// Dimension identifies a grouping key for aggregate queries.
type Dimension string

const (
	DimensionYear       Dimension = "year"
	DimensionMonth      Dimension = "month"
	DimensionSeason     Dimension = "season"
	DimensionGenre      Dimension = "genre"
	DimensionCompany    Dimension = "company"
	DimensionCountry    Dimension = "country"
	DimensionActor      Dimension = "actor"
	DimensionDirector   Dimension = "director"
	DimensionFranchise  Dimension = "franchise"
	DimensionBudgetBand Dimension = "budget_band"
)

// Dimensions lists every supported grouping dimension.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionYear, DimensionMonth, DimensionSeason,
		DimensionGenre, DimensionCompany, DimensionCountry,
		DimensionActor, DimensionDirector, DimensionFranchise,
		DimensionBudgetBand,
	}
}

// Valid reports whether d names a supported dimension.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions() {
		if d == known {
			return true
		}
	}
	return false
}

// Stat is one descriptive statistic computed over the reported values of a
// field. Count is the number of reported samples the statistic is based on;
// consumers use it to judge reliability. Mean/Median/StdDev are null when
// Count is too small to support them.
type Stat struct {
	Count  int       `json:"count"`
	Mean   NullFloat `json:"mean"`
	Median NullFloat `json:"median"`
	StdDev NullFloat `json:"std_dev"`
}

// SummaryStats holds the dataset-level descriptive statistics.
type SummaryStats struct {
	Movies  int  `json:"movies"`
	Budget  Stat `json:"budget"`
	Revenue Stat `json:"revenue"`
	ROI     Stat `json:"roi"`
	Runtime Stat `json:"runtime"`
}

// GroupAggregate is one row of an aggregate table: a grouping key plus the
// summary metrics for the movies in that group. Mean metrics carry their own
// reported-sample counts. BlockbusterRate is null when Count is zero.
type GroupAggregate struct {
	Key             string    `json:"key"`
	Count           int       `json:"count"`
	RevenueCount    int       `json:"revenue_count"`
	MeanRevenue     NullFloat `json:"mean_revenue"`
	ROICount        int       `json:"roi_count"`
	MeanROI         NullFloat `json:"mean_roi"`
	Blockbusters    int       `json:"blockbusters"`
	BlockbusterRate NullFloat `json:"blockbuster_rate"`
	LowConfidence   bool      `json:"low_confidence"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over numeric
// movie fields. Values[i][j] is null when fewer than the configured minimum
// number of rows report both fields; Samples[i][j] is that pairwise count.
type CorrelationMatrix struct {
	Fields  []string      `json:"fields"`
	Values  [][]NullFloat `json:"values"`
	Samples [][]int       `json:"samples"`
}

// Overview mirrors the headline numbers on the dashboard landing view.
type Overview struct {
	Movies           int       `json:"movies"`
	Blockbusters     int       `json:"blockbusters"`
	BlockbusterShare NullFloat `json:"blockbuster_share"`
	MedianBudget     NullFloat `json:"median_budget"`
	MedianRevenue    NullFloat `json:"median_revenue"`
	MedianROI        NullFloat `json:"median_roi"`
	MeanPopularity   NullFloat `json:"mean_popularity"`
}
