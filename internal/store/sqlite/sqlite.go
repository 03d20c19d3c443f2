// Package sqlite implements store.Store on an embedded, pure-Go SQLite
// database through gorm. It is the default driver for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justestif/go-moodbeats/internal/store"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "moodbeats.sqlite3"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store is a SQLite-backed store.Store.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Migrator = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating db dir: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// Every connection to :memory: is a separate database, and SQLite
	// serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, sqlDB: sqlDB}
	if err := s.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&genreRow{},
		&songRow{},
		&analysisRow{},
		&recommendationRow{},
		&playlistRow{},
		&playlistEntryRow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Users() store.UserRepository         { return &userRepository{db: s.db} }
func (s *Store) Genres() store.GenreRepository       { return &genreRepository{db: s.db} }
func (s *Store) Songs() store.SongRepository         { return &songRepository{db: s.db} }
func (s *Store) Analyses() store.AnalysisRepository  { return &analysisRepository{db: s.db} }
func (s *Store) Playlists() store.PlaylistRepository { return &playlistRepository{db: s.db} }

// notFound maps gorm's missing-row error to store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
