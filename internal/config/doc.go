// Package config provides centralized configuration management for cinepulse.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CINEPULSE_* for namespacing:
//
//	CINEPULSE_SERVER_PORT=8080
//	CINEPULSE_PATHS_DATA_DIR=data
//	CINEPULSE_ANALYSIS_REVENUE_THRESHOLD=100000000
//	CINEPULSE_ANALYSIS_ROI_THRESHOLD=2.5
//	CINEPULSE_LOGGING_LEVEL=info
//
// # Analysis Thresholds
//
// The blockbuster labeling rule and minimum-sample cutoffs live in
// AnalysisConfig rather than as constants scattered through the pipeline.
// AnalysisConfig.Hash() fingerprints the thresholds so cached derived data
// is invalidated when they change.
//
// # Path Management
//
// The Paths type resolves data, cache, report, and log locations once at
// startup:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	movies := paths.MoviesCSV()
//	report := paths.ReportPath("genre_aggregates.csv")
package config
