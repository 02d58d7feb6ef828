package analyze

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"cinepulse/internal/domain"
)

// groupAccum accumulates the per-group metrics during a group-by pass.
type groupAccum struct {
	count        int
	blockbusters int
	revSum       float64
	revCount     int
	roiSum       float64
	roiCount     int
}

func (g *groupAccum) add(m domain.Movie) {
	g.count++
	if m.IsBlockbuster {
		g.blockbusters++
	}
	if domain.Reported(m.Revenue) {
		g.revSum += m.Revenue
		g.revCount++
	}
	if m.HasROI() {
		g.roiSum += m.ROI
		g.roiCount++
	}
}

// GroupBy computes the aggregate table for one grouping dimension. Column
// dimensions (year, month, season, franchise, budget_band) group on cleaned
// movie columns and sort by their natural order; entity dimensions (genre,
// company, country, actor, director) join the association relation and sort
// by descending mean revenue. Groups below the configured minimum count are
// flagged low confidence rather than hidden.
func (a *Analyzer) GroupBy(movies []domain.Movie, associations []domain.Association, dim domain.Dimension) ([]domain.GroupAggregate, error) {
	switch dim {
	case domain.DimensionYear:
		return a.groupByColumn(movies, func(m domain.Movie) (string, bool) {
			return strconv.Itoa(m.ReleaseYear), m.HasYear()
		}, byNumericKey), nil
	case domain.DimensionMonth:
		return a.groupByColumn(movies, func(m domain.Movie) (string, bool) {
			return m.ReleaseMonth.String(), m.ReleaseMonth != 0
		}, byCalendarOrder(monthOrder)), nil
	case domain.DimensionSeason:
		return a.groupByColumn(movies, func(m domain.Movie) (string, bool) {
			return m.Season, m.Season != ""
		}, byCalendarOrder(seasonOrder)), nil
	case domain.DimensionBudgetBand:
		return a.groupByColumn(movies, func(m domain.Movie) (string, bool) {
			return budgetBand(m.Budget)
		}, byCalendarOrder(budgetBandOrder)), nil
	case domain.DimensionFranchise:
		return a.groupByColumn(movies, func(m domain.Movie) (string, bool) {
			if m.IsFranchise {
				return "Franchise", true
			}
			return "Standalone", true
		}, byCalendarOrder(franchiseOrder)), nil
	case domain.DimensionGenre:
		return a.groupByEntity(movies, associations, domain.EntityGenre), nil
	case domain.DimensionCompany:
		return a.groupByEntity(movies, associations, domain.EntityCompany), nil
	case domain.DimensionCountry:
		return a.groupByEntity(movies, associations, domain.EntityCountry), nil
	case domain.DimensionActor:
		return a.groupByEntity(movies, associations, domain.EntityActor), nil
	case domain.DimensionDirector:
		return a.groupByEntity(movies, associations, domain.EntityDirector), nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}
}

// groupByColumn groups movies on a cleaned column. Movies where the column
// is null are excluded, so per-group counts sum to the number of rows with a
// non-null value for the dimension.
func (a *Analyzer) groupByColumn(movies []domain.Movie, key func(domain.Movie) (string, bool), less func([]domain.GroupAggregate) func(i, j int) bool) []domain.GroupAggregate {
	groups := make(map[string]*groupAccum)
	for _, m := range movies {
		k, ok := key(m)
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &groupAccum{}
			groups[k] = g
		}
		g.add(m)
	}

	result := a.finalize(groups)
	sort.SliceStable(result, less(result))
	return result
}

// groupByEntity joins associations of one entity type to the cleaned table
// and groups on the entity name. Every association row contributes exactly
// once, so per-group counts sum to the association rows of that type.
func (a *Analyzer) groupByEntity(movies []domain.Movie, associations []domain.Association, entityType domain.EntityType) []domain.GroupAggregate {
	byID := make(map[int64]domain.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	groups := make(map[string]*groupAccum)
	for _, assoc := range associations {
		if assoc.Type != entityType {
			continue
		}
		m, ok := byID[assoc.MovieID]
		if !ok {
			continue
		}
		g := groups[assoc.Name]
		if g == nil {
			g = &groupAccum{}
			groups[assoc.Name] = g
		}
		g.add(m)
	}

	result := a.finalize(groups)
	sort.SliceStable(result, byMeanRevenue(result))
	return result
}

// finalize turns accumulators into aggregate rows.
func (a *Analyzer) finalize(groups map[string]*groupAccum) []domain.GroupAggregate {
	result := make([]domain.GroupAggregate, 0, len(groups))
	for key, g := range groups {
		row := domain.GroupAggregate{
			Key:             key,
			Count:           g.count,
			RevenueCount:    g.revCount,
			MeanRevenue:     domain.Null(),
			ROICount:        g.roiCount,
			MeanROI:         domain.Null(),
			Blockbusters:    g.blockbusters,
			BlockbusterRate: ratio(g.blockbusters, g.count),
			LowConfidence:   g.count < a.cfg.MinGroupCount,
		}
		if g.revCount > 0 {
			row.MeanRevenue = domain.NullFloat(g.revSum / float64(g.revCount))
		}
		if g.roiCount > 0 {
			row.MeanROI = domain.NullFloat(g.roiSum / float64(g.roiCount))
		}
		result = append(result, row)
	}
	return result
}

// Sort orders.

func byNumericKey(rows []domain.GroupAggregate) func(i, j int) bool {
	return func(i, j int) bool {
		a, _ := strconv.Atoi(rows[i].Key)
		b, _ := strconv.Atoi(rows[j].Key)
		return a < b
	}
}

func byMeanRevenue(rows []domain.GroupAggregate) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := float64(rows[i].MeanRevenue), float64(rows[j].MeanRevenue)
		if nanLast(a, b) {
			return true
		}
		if nanLast(b, a) {
			return false
		}
		return rows[i].Key < rows[j].Key
	}
}

func byCalendarOrder(order map[string]int) func([]domain.GroupAggregate) func(i, j int) bool {
	return func(rows []domain.GroupAggregate) func(i, j int) bool {
		return func(i, j int) bool {
			return order[rows[i].Key] < order[rows[j].Key]
		}
	}
}

var (
	monthOrder = func() map[string]int {
		m := make(map[string]int, 12)
		for i := time.January; i <= time.December; i++ {
			m[i.String()] = int(i)
		}
		return m
	}()
	seasonOrder     = map[string]int{"Winter": 0, "Spring": 1, "Summer": 2, "Fall": 3}
	franchiseOrder  = map[string]int{"Franchise": 0, "Standalone": 1}
	budgetBandOrder = map[string]int{"<10M": 0, "10-40M": 1, "40-100M": 2, "100-250M": 3, "250M+": 4}
)

// budgetBand buckets a reported budget into fixed production-scale bands.
// Movies without a reported budget carry no band and are excluded from the
// budget_band aggregate.
func budgetBand(budget float64) (string, bool) {
	switch {
	case !domain.Reported(budget):
		return "", false
	case budget < 10_000_000:
		return "<10M", true
	case budget < 40_000_000:
		return "10-40M", true
	case budget < 100_000_000:
		return "40-100M", true
	case budget < 250_000_000:
		return "100-250M", true
	default:
		return "250M+", true
	}
}
