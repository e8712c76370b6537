// Package config loads squawka's layered configuration: defaults, an
// optional .env file, an optional YAML file named by SQUAWKA_CONFIG, then
// SQUAWKA_* environment variables. Command-line flags are applied last by
// the cmd package.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pable/squawka-xg/internal/logger"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

const envPrefix = "SQUAWKA_"

// Config contains process configuration.
type Config struct {
	// DBPath is the SQLite document and results store.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Breaks is how many possession changes a build-up may span.
	Breaks int `koanf:"breaks"`

	// GoalsOnly restricts sequencing to attempts that were scored.
	GoalsOnly bool `koanf:"goals_only"`

	// HTTPTimeout bounds a single document download.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// MongoURI, when set, makes export read documents from MongoDB.
	MongoURI        string `koanf:"mongo_uri"`
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`

	// MetricsFile, when set, receives export counters in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		DBPath:          filepath.Join(userHome(), ".squawka", "xg.db"),
		LogLevel:        "info",
		Breaks:          1,
		HTTPTimeout:     30 * time.Second,
		MongoDatabase:   "squawka",
		MongoCollection: "squawka",
	}
}

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if SQUAWKA_CONFIG is set
//  3. env (prefix SQUAWKA_), including values from a .env file in the working directory
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
		logger.Get().Debug(ctx, "config file loaded", logger.String("path", path))
	}

	// SQUAWKA_DB_PATH -> db_path
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.Breaks < 0:
		return fmt.Errorf("%w: breaks must be >= 0, got %d", ErrInvalidConfig, c.Breaks)
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("%w: http_timeout must be positive, got %s", ErrInvalidConfig, c.HTTPTimeout)
	case c.MongoURI != "" && (c.MongoDatabase == "" || c.MongoCollection == ""):
		return fmt.Errorf("%w: mongo_database and mongo_collection are required with mongo_uri", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
