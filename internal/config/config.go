// Package config reads MoodBeats settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/chat"
	"github.com/justestif/go-moodbeats/internal/store/sqlite"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultAddr is the HTTP listen address when MOODBEATS_ADDR is unset.
const DefaultAddr = "127.0.0.1:8080"

var (
	// ErrUnknownDriver is returned for a storage driver other than sqlite or postgres.
	ErrUnknownDriver = errors.New("unknown storage driver")

	// ErrMissingDatabaseURL is returned when the postgres driver has no DATABASE_URL.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
)

// Config holds process configuration.
type Config struct {
	Addr            string
	StorageDriver   string
	DatabaseURL     string
	SQLitePath      string
	RedisAddr       string // empty selects the in-process cache
	CacheTTL        time.Duration
	AnalysisTimeout time.Duration
	LogLevel        string
	LogFormat       string
	SystemPrompt    string // empty keeps analysis.DefaultSystemPrompt

	// Chat is not validated here; commands that never call the LLM run without it.
	Chat chat.Config

	SpotifyID     string
	SpotifySecret string
	LastFMAPIKey  string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:          getenv("MOODBEATS_ADDR", DefaultAddr),
		StorageDriver: strings.ToLower(getenv("MOODBEATS_STORAGE_DRIVER", DriverSQLite)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getenv("MOODBEATS_SQLITE_PATH", sqlite.DefaultPath),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		LogLevel:      getenv("MOODBEATS_LOG_LEVEL", "info"),
		LogFormat:     getenv("MOODBEATS_LOG_FORMAT", "json"),
		SystemPrompt:  os.Getenv("MOODBEATS_SYSTEM_PROMPT"),
		Chat:          chat.ConfigFromEnv(),
		SpotifyID:     os.Getenv("SPOTIFY_ID"),
		SpotifySecret: os.Getenv("SPOTIFY_SECRET"),
		LastFMAPIKey:  os.Getenv("LASTFM_API_KEY"),
	}

	var err error
	if cfg.CacheTTL, err = duration("MOODBEATS_CACHE_TTL", analysis.DefaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.AnalysisTimeout, err = duration("MOODBEATS_ANALYSIS_TIMEOUT", analysis.DefaultTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the storage settings.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StorageDriver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parsing %s: must be positive", key)
	}
	return d, nil
}
