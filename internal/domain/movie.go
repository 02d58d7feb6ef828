package domain

import (
	"math"
	"time"
)

// RawMovie holds one row of movies_metadata.csv exactly as read from disk.
// Every field except ID may be empty or garbage; cleaning happens in the
// preprocess package.
type RawMovie struct {
	ID          string
	Title       string
	Budget      string
	Revenue     string
	Popularity  string
	Runtime     string
	VoteAverage string
	VoteCount   string
	ReleaseDate string
	Genres      string
	Companies   string
	Countries   string
	Collection  string
}

// RawCredit holds one row of credits.csv. Cast and Crew are serialized
// entity lists keyed by the same movie ID as RawMovie.
type RawCredit struct {
	ID   string
	Cast string
	Crew string
}

// Movie is a cleaned movie record. Numeric fields use NaN as the explicit
// "not reported" marker so an actual zero is never confused with missing
// data. Movies round-trip through the SQLite cache, not JSON.
type Movie struct {
	ID            int64
	Title         string
	Budget        float64
	Revenue       float64
	Runtime       float64
	Popularity    float64
	VoteAverage   float64
	VoteCount     float64
	ReleaseYear   int        // 0 when the release date is missing or malformed
	ReleaseMonth  time.Month // 0 when unknown
	Season        string     // "" when unknown
	MainGenre     string
	MainCompany   string
	MainCountry   string
	Collection    string
	IsFranchise   bool
	LeadActor     string
	Director      string
	ROI           float64 // NaN unless both budget and revenue are reported
	IsBlockbuster bool
}

// Reported reports whether a numeric field carries an actual value.
func Reported(v float64) bool {
	return !math.IsNaN(v)
}

// Unreported is the marker stored in numeric fields when the source value
// was missing, unparseable, or a "not reported" zero.
func Unreported() float64 {
	return math.NaN()
}

// HasROI reports whether ROI is defined for the movie, which by construction
// is exactly when both budget and revenue are reported.
func (m Movie) HasROI() bool {
	return Reported(m.ROI)
}

// HasYear reports whether the movie can take part in year-indexed aggregates.
func (m Movie) HasYear() bool {
	return m.ReleaseYear != 0
}
