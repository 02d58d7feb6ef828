package preprocess

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
	apperrors "cinepulse/internal/errors"
)

// Stats counts what happened during a cleaning run. Row-level problems are
// absorbed here and surface only as counts and warning logs; they never abort
// the batch.
type Stats struct {
	RawRows          int `json:"raw_rows"`
	Cleaned          int `json:"cleaned"`
	Duplicates       int `json:"duplicates"`
	DroppedNoID      int `json:"dropped_no_id"`
	MalformedFields  int `json:"malformed_fields"`
	Associations     int `json:"associations"`
	CreditsMatched   int `json:"credits_matched"`
	CreditsUnmatched int `json:"credits_unmatched"`
}

// Preprocessor turns raw CSV records into the cleaned movie table and the
// normalized association relation. It is stateless: Clean is deterministic
// and idempotent for a given input and configuration.
type Preprocessor struct {
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// New creates a Preprocessor with the given thresholds.
func New(cfg config.AnalysisConfig, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "preprocess")),
	}
}

// Clean produces the cleaned movie table and association relation from raw
// records. Duplicate movie IDs keep their first occurrence; rows without a
// parseable ID are dropped; every association row references a movie present
// in the returned table.
func (p *Preprocessor) Clean(raw []domain.RawMovie, credits []domain.RawCredit) ([]domain.Movie, []domain.Association, Stats) {
	stats := Stats{RawRows: len(raw)}

	creditIndex := indexCredits(credits)

	seen := make(map[int64]bool, len(raw))
	movies := make([]domain.Movie, 0, len(raw))
	var associations []domain.Association

	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
		if err != nil {
			stats.DroppedNoID++
			continue
		}
		if seen[id] {
			stats.Duplicates++
			continue
		}
		seen[id] = true

		movie := p.cleanMovie(id, r)

		genres := p.parseListField(id, "genres", r.Genres, &stats)
		companies := p.parseListField(id, "production_companies", r.Companies, &stats)
		countries := p.parseListField(id, "production_countries", r.Countries, &stats)

		movie.MainGenre = firstName(genres)
		movie.MainCompany = firstName(companies)
		movie.MainCountry = firstName(countries)

		if collection, ok, err := ParseEntity(r.Collection); err != nil {
			rowErr := apperrors.MalformedRecord("parse belongs_to_collection", err)
			stats.MalformedFields++
			p.logger.Warn("skipping malformed collection field",
				slog.Int64("movie_id", id), slog.String("error", rowErr.Error()))
		} else if ok {
			movie.Collection = collection.Name
			movie.IsFranchise = true
		}

		var cast, directors []Entity
		if credit, ok := creditIndex[id]; ok {
			stats.CreditsMatched++
			cast = p.parseListField(id, "cast", credit.Cast, &stats)
			if len(cast) > p.cfg.MaxCastCredits {
				cast = cast[:p.cfg.MaxCastCredits]
			}
			crew := p.parseListField(id, "crew", credit.Crew, &stats)
			for _, member := range crew {
				if member.Job == "Director" {
					directors = append(directors, member)
				}
			}
			movie.LeadActor = firstName(cast)
			movie.Director = firstName(directors)
		}

		movies = append(movies, movie)
		associations = appendAssociations(associations, id, domain.EntityGenre, genres)
		associations = appendAssociations(associations, id, domain.EntityCompany, companies)
		associations = appendAssociations(associations, id, domain.EntityCountry, countries)
		associations = appendAssociations(associations, id, domain.EntityActor, cast)
		associations = appendAssociations(associations, id, domain.EntityDirector, directors)
	}

	for id := range creditIndex {
		if !seen[id] {
			stats.CreditsUnmatched++
		}
	}

	stats.Cleaned = len(movies)
	stats.Associations = len(associations)

	p.logger.Info("cleaning complete",
		slog.Int("raw_rows", stats.RawRows),
		slog.Int("cleaned", stats.Cleaned),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("dropped_no_id", stats.DroppedNoID),
		slog.Int("malformed_fields", stats.MalformedFields),
		slog.Int("associations", stats.Associations),
	)

	return movies, associations, stats
}

// cleanMovie coerces the scalar fields of one raw row.
func (p *Preprocessor) cleanMovie(id int64, r domain.RawMovie) domain.Movie {
	movie := domain.Movie{
		ID:          id,
		Title:       r.Title,
		Budget:      parsePositive(r.Budget),
		Revenue:     parsePositive(r.Revenue),
		Runtime:     parsePositive(r.Runtime),
		Popularity:  parseNonNegative(r.Popularity),
		VoteAverage: parseNonNegative(r.VoteAverage),
		VoteCount:   parseNonNegative(r.VoteCount),
		ROI:         domain.Unreported(),
	}

	if date, err := time.Parse("2006-01-02", strings.TrimSpace(r.ReleaseDate)); err == nil {
		movie.ReleaseYear = date.Year()
		movie.ReleaseMonth = date.Month()
		movie.Season = seasonOf(date.Month())
	}

	// ROI needs both sides of the ratio: a zero budget or revenue means
	// "not reported", so the ratio is undefined rather than infinite.
	if domain.Reported(movie.Budget) && domain.Reported(movie.Revenue) {
		movie.ROI = (movie.Revenue - movie.Budget) / movie.Budget
	}

	movie.IsBlockbuster = p.isBlockbuster(movie)
	return movie
}

// isBlockbuster applies the configured labeling rule. A movie with neither
// budget nor revenue reported is labeled false: insufficient evidence, not a
// third label state.
func (p *Preprocessor) isBlockbuster(m domain.Movie) bool {
	if domain.Reported(m.Revenue) && m.Revenue >= p.cfg.RevenueThreshold {
		return true
	}
	return m.HasROI() && m.ROI >= p.cfg.ROIThreshold
}

// parseListField parses one serialized entity list, absorbing malformed
// fields into the stats.
func (p *Preprocessor) parseListField(id int64, name, value string, stats *Stats) []Entity {
	entities, err := ParseEntityList(value)
	if err != nil {
		rowErr := apperrors.MalformedRecord("parse "+name, err)
		stats.MalformedFields++
		p.logger.Warn("skipping malformed entity field",
			slog.Int64("movie_id", id),
			slog.String("field", name),
			slog.String("error", rowErr.Error()))
		return nil
	}
	return entities
}

func indexCredits(credits []domain.RawCredit) map[int64]domain.RawCredit {
	index := make(map[int64]domain.RawCredit, len(credits))
	for _, c := range credits {
		id, err := strconv.ParseInt(strings.TrimSpace(c.ID), 10, 64)
		if err != nil {
			continue
		}
		if _, ok := index[id]; !ok {
			index[id] = c
		}
	}
	return index
}

func appendAssociations(dst []domain.Association, id int64, t domain.EntityType, entities []Entity) []domain.Association {
	for _, e := range entities {
		dst = append(dst, domain.Association{MovieID: id, Type: t, Name: e.Name})
	}
	return dst
}

func firstName(entities []Entity) string {
	if len(entities) == 0 {
		return ""
	}
	return entities[0].Name
}

// parsePositive coerces a numeric string where zero and negatives mean "not
// reported" rather than an actual amount.
func parsePositive(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return domain.Unreported()
	}
	return v
}

// parseNonNegative coerces a numeric string where zero is a legitimate value
// (popularity, vote counts) but garbage and negatives are not.
func parseNonNegative(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return domain.Unreported()
	}
	return v
}

// seasonOf maps a release month to its meteorological season.
func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}
