package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains request rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against the working directory by Paths.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalysisConfig holds every tunable threshold used by the preprocessing and
// analysis stages. The blockbuster rule and the minimum-sample cutoffs are
// deliberately configuration, not constants, so the labeling is auditable.
type AnalysisConfig struct {
	// RevenueThreshold is the absolute revenue cutoff of the blockbuster rule.
	RevenueThreshold float64 `yaml:"revenue_threshold" envconfig:"REVENUE_THRESHOLD" validate:"gt=0"`
	// ROIThreshold is the ROI cutoff of the blockbuster rule.
	ROIThreshold float64 `yaml:"roi_threshold" envconfig:"ROI_THRESHOLD" validate:"gt=0"`
	// MinGroupCount flags aggregate groups below this size as low confidence.
	MinGroupCount int `yaml:"min_group_count" envconfig:"MIN_GROUP_COUNT" validate:"gte=1"`
	// MinCorrelationSamples is the smallest pairwise sample for which a
	// correlation is reported at all.
	MinCorrelationSamples int `yaml:"min_correlation_samples" envconfig:"MIN_CORRELATION_SAMPLES" validate:"gte=2"`
	// MaxCastCredits caps how many top-billed actors become associations.
	MaxCastCredits int `yaml:"max_cast_credits" envconfig:"MAX_CAST_CREDITS" validate:"gte=1"`
}

// Default returns the built-in configuration. Defaults live here rather than
// in envconfig struct tags: a tag default would be re-applied on the
// environment pass and silently undo values read from the YAML file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/cinepulse.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			CacheDir:   "data/cache",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Analysis: AnalysisConfig{
			RevenueThreshold:      100_000_000,
			ROIThreshold:          2.5,
			MinGroupCount:         5,
			MinCorrelationSamples: 2,
			MaxCastCredits:        5,
		},
	}
}

// Hash returns a deterministic fingerprint of the analysis thresholds. The
// cache layer stores it alongside derived data so a threshold change
// invalidates previously cached labels.
func (a AnalysisConfig) Hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"rev=%.6f;roi=%.6f;group=%d;corr=%d;cast=%d",
		a.RevenueThreshold, a.ROIThreshold,
		a.MinGroupCount, a.MinCorrelationSamples, a.MaxCastCredits,
	)))
	return hex.EncodeToString(sum[:])
}

// EnvPrefix is the prefix for all configuration environment variables.
const EnvPrefix = "CINEPULSE"

// Load loads configuration in increasing precedence: built-in defaults, then
// the optional YAML file, then CINEPULSE_* environment variables. The YAML
// file only has to name what it changes, and envconfig only touches fields
// whose variables are actually set. An empty configFile loads defaults plus
// environment only.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment wins over the file.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct-level constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
