package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/chat"
	"github.com/justestif/go-moodbeats/internal/config"
	"github.com/justestif/go-moodbeats/internal/logging"
	"github.com/justestif/go-moodbeats/internal/recommend"
	"github.com/justestif/go-moodbeats/internal/store"
	"github.com/justestif/go-moodbeats/internal/store/postgres"
	"github.com/justestif/go-moodbeats/internal/store/sqlite"
)

// app holds the dependencies shared by subcommands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	closers []func() error
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDriver != "" {
		cfg.StorageDriver = flagDriver
	}
	if flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flagSQLitePath != "" {
		cfg.SQLitePath = flagSQLitePath
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration, builds the logger and opens the store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.store.Close)
	return a, nil
}

// openStore opens the configured driver with an up-to-date schema.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return sqlite.Open(ctx, cfg.SQLitePath)
	}
}

// service builds the recommendation service with its analyzer and cache.
func (a *app) service(ctx context.Context) (*recommend.Service, error) {
	completer, err := chat.New(&a.cfg.Chat)
	if err != nil {
		return nil, fmt.Errorf("configuring chat client: %w", err)
	}

	var cache analysis.Cache
	if a.cfg.RedisAddr != "" {
		client, err := analysis.DialRedis(ctx, a.cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		cache = analysis.NewRedisCache(client, a.cfg.CacheTTL)
	} else {
		cache = analysis.NewMemoryCache(a.cfg.CacheTTL)
	}

	analyzer := analysis.NewAnalyzer(completer,
		analysis.WithTimeout(a.cfg.AnalysisTimeout),
		analysis.WithCache(cache),
		analysis.WithLogger(a.logger),
		analysis.WithSystemPrompt(a.cfg.SystemPrompt),
	)
	return recommend.New(a.store, analyzer, recommend.WithLogger(a.logger)), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
