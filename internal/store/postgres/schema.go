package postgres

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		characteristics TEXT NOT NULL DEFAULT '',
		energy_min INTEGER NOT NULL CHECK (energy_min BETWEEN 1 AND 10),
		energy_max INTEGER NOT NULL CHECK (energy_max BETWEEN 1 AND 10),
		valence_min INTEGER NOT NULL CHECK (valence_min BETWEEN 1 AND 10),
		valence_max INTEGER NOT NULL CHECK (valence_max BETWEEN 1 AND 10),
		arousal_min INTEGER NOT NULL CHECK (arousal_min BETWEEN 1 AND 10),
		arousal_max INTEGER NOT NULL CHECK (arousal_max BETWEEN 1 AND 10),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		genre_id BIGINT REFERENCES genres(id) ON DELETE SET NULL,
		energy INTEGER NOT NULL CHECK (energy BETWEEN 1 AND 10),
		arousal INTEGER NOT NULL CHECK (arousal BETWEEN 1 AND 10),
		valence INTEGER NOT NULL CHECK (valence BETWEEN 1 AND 10),
		tempo_bpm INTEGER CHECK (tempo_bpm BETWEEN 60 AND 200),
		duration_ms BIGINT CHECK (duration_ms >= 1000),
		spotify_id TEXT NOT NULL DEFAULT '',
		preview_url TEXT NOT NULL DEFAULT '',
		explicit BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (title, artist)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_genre_id ON songs (genre_id)`,
	`CREATE TABLE IF NOT EXISTS mood_analyses (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '',
		emotions TEXT[] NOT NULL DEFAULT '{}',
		energy INTEGER,
		arousal INTEGER,
		valence INTEGER,
		recommended_genres TEXT[] NOT NULL DEFAULT '{}',
		insight TEXT NOT NULL DEFAULT '',
		raw TEXT NOT NULL DEFAULT '',
		fallback BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mood_analyses_user_id ON mood_analyses (user_id)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id UUID PRIMARY KEY,
		analysis_id UUID NOT NULL REFERENCES mood_analyses(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		song_id BIGINT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
		score DOUBLE PRECISION NOT NULL CHECK (score BETWEEN 0 AND 1),
		reason TEXT NOT NULL DEFAULT '',
		rank INTEGER NOT NULL,
		rating INTEGER CHECK (rating BETWEEN 1 AND 5),
		feedback TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_analysis_id ON recommendations (analysis_id)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		analysis_id UUID REFERENCES mood_analyses(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		public BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlists_user_id ON playlists (user_id)`,
	`CREATE TABLE IF NOT EXISTS playlist_songs (
		playlist_id UUID NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		position INTEGER NOT NULL CHECK (position >= 1),
		song_id BIGINT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (playlist_id, position),
		UNIQUE (playlist_id, song_id)
	)`,
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
