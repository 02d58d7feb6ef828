// Package store persists the cleaned movie table and association relation in
// a SQLite cache so repeated runs skip the expensive preprocessing pass. The
// cache is never the source of truth: a snapshot whose schema version, config
// hash, or source fingerprint does not match is discarded and the raw data is
// reprocessed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"cinepulse/internal/domain"
)

// SchemaVersion identifies the cache table layout. Bump it whenever the
// cleaned-table schema changes so stale derived columns cannot propagate.
const SchemaVersion = 2

// Snapshot is one cached cleaned dataset. ID is assigned when the snapshot
// is saved.
type Snapshot struct {
	ID           string
	Fingerprint  string
	ConfigHash   string
	CreatedAt    time.Time
	Movies       []domain.Movie
	Associations []domain.Association
}

// Cache wraps the SQLite artifact.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	c := &Cache{db: db, logger: logger.With(slog.String("component", "cache"))}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS movies (
			id             INTEGER PRIMARY KEY,
			title          TEXT NOT NULL,
			budget         REAL,
			revenue        REAL,
			runtime        REAL,
			popularity     REAL,
			vote_average   REAL,
			vote_count     REAL,
			release_year   INTEGER NOT NULL,
			release_month  INTEGER NOT NULL,
			season         TEXT NOT NULL,
			main_genre     TEXT NOT NULL,
			main_company   TEXT NOT NULL,
			main_country   TEXT NOT NULL,
			collection     TEXT NOT NULL,
			is_franchise   INTEGER NOT NULL,
			lead_actor     TEXT NOT NULL,
			director       TEXT NOT NULL,
			roi            REAL,
			is_blockbuster INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS associations (
			movie_id INTEGER NOT NULL,
			type     TEXT NOT NULL,
			name     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_associations_type ON associations(type)`,
	}
	for _, stmt := range schema {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("create cache schema: %w", err)
		}
	}
	return nil
}

// Save replaces the cached snapshot with the given cleaned dataset and
// returns the stored snapshot with its assigned ID.
func (c *Cache) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	snap.ID = uuid.NewString()
	snap.CreatedAt = time.Now().UTC()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"movies", "associations", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Snapshot{}, fmt.Errorf("clear cache table %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
		"snapshot_id":    snap.ID,
		"fingerprint":    snap.Fingerprint,
		"config_hash":    snap.ConfigHash,
		"created_at":     snap.CreatedAt.Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return Snapshot{}, fmt.Errorf("write cache meta: %w", err)
		}
	}

	movieStmt, err := tx.PrepareContext(ctx, `INSERT INTO movies (
		id, title, budget, revenue, runtime, popularity, vote_average, vote_count,
		release_year, release_month, season, main_genre, main_company, main_country,
		collection, is_franchise, lead_actor, director, roi, is_blockbuster
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare movie insert: %w", err)
	}
	defer movieStmt.Close()

	for _, m := range snap.Movies {
		if _, err := movieStmt.ExecContext(ctx,
			m.ID, m.Title,
			nullable(m.Budget), nullable(m.Revenue), nullable(m.Runtime),
			nullable(m.Popularity), nullable(m.VoteAverage), nullable(m.VoteCount),
			m.ReleaseYear, int(m.ReleaseMonth), m.Season,
			m.MainGenre, m.MainCompany, m.MainCountry,
			m.Collection, m.IsFranchise, m.LeadActor, m.Director,
			nullable(m.ROI), m.IsBlockbuster,
		); err != nil {
			return Snapshot{}, fmt.Errorf("insert movie %d: %w", m.ID, err)
		}
	}

	assocStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO associations (movie_id, type, name) VALUES (?, ?, ?)`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare association insert: %w", err)
	}
	defer assocStmt.Close()

	for _, a := range snap.Associations {
		if _, err := assocStmt.ExecContext(ctx, a.MovieID, string(a.Type), a.Name); err != nil {
			return Snapshot{}, fmt.Errorf("insert association: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit cache transaction: %w", err)
	}

	c.logger.InfoContext(ctx, "snapshot cached",
		slog.String("snapshot_id", snap.ID),
		slog.Int("movies", len(snap.Movies)),
		slog.Int("associations", len(snap.Associations)),
	)
	return snap, nil
}

// Load returns the cached snapshot if it matches the expected source
// fingerprint and config hash under the current schema version. ok is false
// when the cache is absent or stale; a stale cache is not an error.
func (c *Cache) Load(ctx context.Context, fingerprint, configHash string) (Snapshot, bool, error) {
	meta, err := c.readMeta(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}

	if meta["schema_version"] != fmt.Sprintf("%d", SchemaVersion) ||
		meta["fingerprint"] != fingerprint ||
		meta["config_hash"] != configHash {
		if len(meta) > 0 {
			c.logger.InfoContext(ctx, "ignoring stale cache snapshot",
				slog.String("cached_schema", meta["schema_version"]),
				slog.String("cached_config", truncate(meta["config_hash"])),
			)
		}
		return Snapshot{}, false, nil
	}

	snap := Snapshot{
		ID:          meta["snapshot_id"],
		Fingerprint: meta["fingerprint"],
		ConfigHash:  meta["config_hash"],
	}
	if t, err := time.Parse(time.RFC3339, meta["created_at"]); err == nil {
		snap.CreatedAt = t
	}

	if snap.Movies, err = c.readMovies(ctx); err != nil {
		return Snapshot{}, false, err
	}
	if snap.Associations, err = c.readAssociations(ctx); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (c *Cache) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("read cache meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan cache meta: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func (c *Cache) readMovies(ctx context.Context) ([]domain.Movie, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT
		id, title, budget, revenue, runtime, popularity, vote_average, vote_count,
		release_year, release_month, season, main_genre, main_company, main_country,
		collection, is_franchise, lead_actor, director, roi, is_blockbuster
	FROM movies ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read cached movies: %w", err)
	}
	defer rows.Close()

	var movies []domain.Movie
	for rows.Next() {
		var (
			m                                  domain.Movie
			budget, revenue, runtime           sql.NullFloat64
			popularity, voteAverage, voteCount sql.NullFloat64
			roi                                sql.NullFloat64
			month                              int
		)
		if err := rows.Scan(
			&m.ID, &m.Title, &budget, &revenue, &runtime,
			&popularity, &voteAverage, &voteCount,
			&m.ReleaseYear, &month, &m.Season,
			&m.MainGenre, &m.MainCompany, &m.MainCountry,
			&m.Collection, &m.IsFranchise, &m.LeadActor, &m.Director,
			&roi, &m.IsBlockbuster,
		); err != nil {
			return nil, fmt.Errorf("scan cached movie: %w", err)
		}
		m.ReleaseMonth = time.Month(month)
		m.Budget = fromNullable(budget)
		m.Revenue = fromNullable(revenue)
		m.Runtime = fromNullable(runtime)
		m.Popularity = fromNullable(popularity)
		m.VoteAverage = fromNullable(voteAverage)
		m.VoteCount = fromNullable(voteCount)
		m.ROI = fromNullable(roi)
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func (c *Cache) readAssociations(ctx context.Context) ([]domain.Association, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT movie_id, type, name FROM associations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read cached associations: %w", err)
	}
	defer rows.Close()

	var associations []domain.Association
	for rows.Next() {
		var (
			a domain.Association
			t string
		)
		if err := rows.Scan(&a.MovieID, &t, &a.Name); err != nil {
			return nil, fmt.Errorf("scan cached association: %w", err)
		}
		a.Type = domain.EntityType(t)
		associations = append(associations, a)
	}
	return associations, rows.Err()
}

// nullable maps the in-memory NaN marker to SQL NULL.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: domain.Reported(v)}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return domain.Unreported()
	}
	return v.Float64
}

func truncate(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
