package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cinepulse/internal/config"
	"cinepulse/internal/domain"
	apperrors "cinepulse/internal/errors"
)

// RawDataset bundles the raw tables read from disk together with a content
// fingerprint. The fingerprint keys memoization and cache invalidation: when
// the source files change, everything derived from them is recomputed.
type RawDataset struct {
	Movies      []domain.RawMovie
	Credits     []domain.RawCredit
	Fingerprint string
}

// Loader reads the raw CSV tables from the configured data directory.
// It has no side effects beyond file reads.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// New creates a Loader.
func New(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads the movies metadata and credits tables. The movies table is
// required; a missing credits table degrades to movies-only analysis with a
// warning. A missing movies table yields a DataUnavailable error so callers
// can fall back to the cache before giving up.
func (l *Loader) Load(ctx context.Context) (*RawDataset, error) {
	moviesPath := l.paths.MoviesCSV()
	creditsPath := l.paths.CreditsCSV()

	if _, err := os.Stat(moviesPath); os.IsNotExist(err) {
		return nil, apperrors.DataUnavailable(
			fmt.Sprintf("movies metadata file not found: %s", moviesPath), err)
	}

	var (
		movies  []domain.RawMovie
		credits []domain.RawCredit
	)

	// The two tables are independent until preprocessing joins them, so read
	// them concurrently inside this one request.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = l.readMovies(ctx, moviesPath)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = l.readCredits(ctx, creditsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fingerprint, err := Fingerprint(moviesPath, creditsPath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint dataset: %w", err)
	}

	l.logger.InfoContext(ctx, "raw dataset loaded",
		slog.Int("movies", len(movies)),
		slog.Int("credits", len(credits)),
		slog.String("fingerprint", fingerprint[:12]),
	)

	return &RawDataset{Movies: movies, Credits: credits, Fingerprint: fingerprint}, nil
}

// movieColumns holds the indices of the movie columns, -1 when absent.
type movieColumns struct {
	id          int
	title       int
	budget      int
	revenue     int
	popularity  int
	runtime     int
	voteAverage int
	voteCount   int
	releaseDate int
	genres      int
	companies   int
	countries   int
	collection  int
}

func findMovieColumns(header []string) movieColumns {
	cols := movieColumns{
		id: -1, title: -1, budget: -1, revenue: -1, popularity: -1, runtime: -1,
		voteAverage: -1, voteCount: -1, releaseDate: -1,
		genres: -1, companies: -1, countries: -1, collection: -1,
	}
	for i, col := range header {
		switch normalizeColumn(col) {
		case "id":
			cols.id = i
		case "original_title", "title":
			cols.title = i
		case "budget":
			cols.budget = i
		case "revenue":
			cols.revenue = i
		case "popularity":
			cols.popularity = i
		case "runtime":
			cols.runtime = i
		case "vote_average":
			cols.voteAverage = i
		case "vote_count":
			cols.voteCount = i
		case "release_date":
			cols.releaseDate = i
		case "genres":
			cols.genres = i
		case "production_companies":
			cols.companies = i
		case "production_countries":
			cols.countries = i
		case "belongs_to_collection":
			cols.collection = i
		}
	}
	return cols
}

// readMovies parses movies_metadata.csv into raw records. The file is known
// to contain ragged rows and stray quotes, so the reader is deliberately
// lenient; structurally unusable rows are skipped with a count.
func (l *Loader) readMovies(ctx context.Context, path string) ([]domain.RawMovie, error) {
	records, err := readCSVFile(path)
	if err != nil {
		return nil, apperrors.DataUnavailable(
			fmt.Sprintf("unreadable movies metadata file: %s", path), err)
	}
	if len(records) < 2 {
		return nil, apperrors.DataUnavailable(
			fmt.Sprintf("movies metadata file has no data rows: %s", path), nil)
	}

	cols := findMovieColumns(records[0])
	if cols.id == -1 {
		return nil, apperrors.DataUnavailable(
			fmt.Sprintf("movies metadata file is missing an id column: %s", path), nil)
	}

	movies := make([]domain.RawMovie, 0, len(records)-1)
	skipped := 0
	for _, record := range records[1:] {
		if len(record) <= cols.id || strings.TrimSpace(record[cols.id]) == "" {
			skipped++
			continue
		}
		movies = append(movies, domain.RawMovie{
			ID:          field(record, cols.id),
			Title:       field(record, cols.title),
			Budget:      field(record, cols.budget),
			Revenue:     field(record, cols.revenue),
			Popularity:  field(record, cols.popularity),
			Runtime:     field(record, cols.runtime),
			VoteAverage: field(record, cols.voteAverage),
			VoteCount:   field(record, cols.voteCount),
			ReleaseDate: field(record, cols.releaseDate),
			Genres:      field(record, cols.genres),
			Companies:   field(record, cols.companies),
			Countries:   field(record, cols.countries),
			Collection:  field(record, cols.collection),
		})
	}

	if skipped > 0 {
		l.logger.WarnContext(ctx, "skipped unusable movie rows",
			slog.Int("skipped", skipped))
	}
	return movies, nil
}

// readCredits parses credits.csv. A missing file is not fatal: person-level
// analysis is simply unavailable without it.
func (l *Loader) readCredits(ctx context.Context, path string) ([]domain.RawCredit, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		l.logger.WarnContext(ctx, "credits file not found, person analysis disabled",
			slog.String("path", path))
		return nil, nil
	}

	records, err := readCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credits file: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	idCol, castCol, crewCol := -1, -1, -1
	for i, col := range records[0] {
		switch normalizeColumn(col) {
		case "id":
			idCol = i
		case "cast":
			castCol = i
		case "crew":
			crewCol = i
		}
	}
	if idCol == -1 {
		return nil, fmt.Errorf("credits file is missing an id column: %s", path)
	}

	credits := make([]domain.RawCredit, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) <= idCol || strings.TrimSpace(record[idCol]) == "" {
			continue
		}
		credits = append(credits, domain.RawCredit{
			ID:   field(record, idCol),
			Cast: field(record, castCol),
			Crew: field(record, crewCol),
		})
	}
	return credits, nil
}

// Fingerprint returns a stable hex digest of the given files' contents.
// Missing files contribute their name only, so the digest is still defined
// when optional inputs are absent.
func Fingerprint(paths ...string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, path := range sorted {
		io.WriteString(h, path)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("open %s: %w", path, err)
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
		f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readCSVFile reads an entire CSV file, tolerating a UTF-8 BOM, ragged rows,
// and bare quotes.
func readCSVFile(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// normalizeColumn cleans a header cell for matching.
func normalizeColumn(col string) string {
	col = strings.TrimPrefix(strings.TrimSpace(col), "\uFEFF")
	return strings.ToLower(strings.TrimSpace(col))
}

// field safely extracts a column value from a possibly short record.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
