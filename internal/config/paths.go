package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute directories and well-known file locations
// used across the application.
type Paths struct {
	DataDir    string
	CacheDir   string
	ReportsDir string
	LogsDir    string
}

// Well-known file names inside the data directory.
const (
	MoviesCSVName  = "movies_metadata.csv"
	CreditsCSVName = "credits.csv"
	CacheDBName    = "cinepulse_cache.db"
)

// NewPaths resolves a PathsConfig into absolute paths.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	p := &Paths{}
	for dst, src := range map[*string]string{
		&p.DataDir:    cfg.DataDir,
		&p.CacheDir:   cfg.CacheDir,
		&p.ReportsDir: cfg.ReportsDir,
		&p.LogsDir:    cfg.LogsDir,
	} {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", src, err)
		}
		*dst = abs
	}
	return p, nil
}

// EnsureDirectories creates the writable directories if they do not exist.
// The data directory is input-only and deliberately not created here.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.CacheDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// MoviesCSV returns the path of the raw movies metadata file.
func (p *Paths) MoviesCSV() string {
	return filepath.Join(p.DataDir, MoviesCSVName)
}

// CreditsCSV returns the path of the raw credits file.
func (p *Paths) CreditsCSV() string {
	return filepath.Join(p.DataDir, CreditsCSVName)
}

// CacheDB returns the path of the SQLite cache artifact.
func (p *Paths) CacheDB() string {
	return filepath.Join(p.CacheDir, CacheDBName)
}

// ReportPath returns the path of a named report file.
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPath returns the path of a named log file.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
