package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/store"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

// Ensure returns the user with username, creating it if missing.
func (r *UserRepository) Ensure(ctx context.Context, username string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = store.DefaultUsername
	}

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO users (username, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, email, created_at
	`
	var user store.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensuring user %q: %w", username, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, email, created_at
		FROM users
		WHERE username = $1
	`
	var user store.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// GenreRepository handles genre database operations.
type GenreRepository struct {
	pool *pgxpool.Pool
}

const genreColumns = `id, name, characteristics, energy_min, energy_max, valence_min, valence_max, arousal_min, arousal_max`

func scanGenre(row pgx.Row) (mood.Genre, error) {
	var g mood.Genre
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Characteristics,
		&g.Energy.Min,
		&g.Energy.Max,
		&g.Valence.Min,
		&g.Valence.Max,
		&g.Arousal.Min,
		&g.Arousal.Max,
	)
	return g, err
}

// Upsert creates or updates a genre by name.
func (r *GenreRepository) Upsert(ctx context.Context, g *mood.Genre) error {
	if err := g.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO genres (name, characteristics, energy_min, energy_max, valence_min, valence_max, arousal_min, arousal_max, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (name) DO UPDATE SET
			characteristics = EXCLUDED.characteristics,
			energy_min = EXCLUDED.energy_min,
			energy_max = EXCLUDED.energy_max,
			valence_min = EXCLUDED.valence_min,
			valence_max = EXCLUDED.valence_max,
			arousal_min = EXCLUDED.arousal_min,
			arousal_max = EXCLUDED.arousal_max
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		g.Name,
		g.Characteristics,
		g.Energy.Min, g.Energy.Max,
		g.Valence.Min, g.Valence.Max,
		g.Arousal.Min, g.Arousal.Max,
	).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("upserting genre %q: %w", g.Name, err)
	}
	return nil
}

// GetByName retrieves a genre by case-insensitive name.
func (r *GenreRepository) GetByName(ctx context.Context, name string) (*mood.Genre, error) {
	query := `SELECT ` + genreColumns + ` FROM genres WHERE lower(name) = lower($1)`
	g, err := scanGenre(r.pool.QueryRow(ctx, query, strings.TrimSpace(name)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying genre: %w", err)
	}
	return &g, nil
}

// List retrieves all genres ordered by name.
func (r *GenreRepository) List(ctx context.Context) ([]mood.Genre, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying genres: %w", err)
	}
	defer rows.Close()

	var genres []mood.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating genres: %w", err)
	}
	return genres, nil
}

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

const songSelect = `
	SELECT s.id, s.title, s.artist, s.genre_id, COALESCE(g.name, ''),
		s.energy, s.arousal, s.valence, s.tempo_bpm, s.duration_ms,
		s.spotify_id, s.preview_url, s.explicit
	FROM songs s
	LEFT JOIN genres g ON g.id = s.genre_id
`

func scanSong(row pgx.Row) (mood.Song, error) {
	var (
		s                        mood.Song
		energy, arousal, valence int
	)
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Artist,
		&s.GenreID,
		&s.GenreName,
		&energy,
		&arousal,
		&valence,
		&s.TempoBPM,
		&s.DurationMs,
		&s.SpotifyID,
		&s.PreviewURL,
		&s.Explicit,
	)
	if err != nil {
		return mood.Song{}, err
	}
	s.Mood, err = mood.ParseVector(energy, arousal, valence)
	if err != nil {
		return mood.Song{}, fmt.Errorf("decoding song %d: %w", s.ID, err)
	}
	return s, nil
}

func collectSongs(rows pgx.Rows) ([]mood.Song, error) {
	defer rows.Close()
	var songs []mood.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating songs: %w", err)
	}
	return songs, nil
}

// Upsert creates or updates a song by (title, artist).
func (r *SongRepository) Upsert(ctx context.Context, s *mood.Song) error {
	if err := s.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO songs (title, artist, genre_id, energy, arousal, valence, tempo_bpm, duration_ms, spotify_id, preview_url, explicit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (title, artist) DO UPDATE SET
			genre_id = EXCLUDED.genre_id,
			energy = EXCLUDED.energy,
			arousal = EXCLUDED.arousal,
			valence = EXCLUDED.valence,
			tempo_bpm = EXCLUDED.tempo_bpm,
			duration_ms = EXCLUDED.duration_ms,
			spotify_id = EXCLUDED.spotify_id,
			preview_url = EXCLUDED.preview_url,
			explicit = EXCLUDED.explicit
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		s.Title,
		s.Artist,
		s.GenreID,
		s.Mood.Energy(),
		s.Mood.Arousal(),
		s.Mood.Valence(),
		s.TempoBPM,
		s.DurationMs,
		s.SpotifyID,
		s.PreviewURL,
		s.Explicit,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("upserting song %q: %w", s.DisplayName(), err)
	}
	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id int64) (*mood.Song, error) {
	s, err := scanSong(r.pool.QueryRow(ctx, songSelect+` WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &s, nil
}

// List retrieves all songs ordered by ID.
func (r *SongRepository) List(ctx context.Context) ([]mood.Song, error) {
	rows, err := r.pool.Query(ctx, songSelect+` ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	return collectSongs(rows)
}

// ListByIDs retrieves the songs among ids, in ids order.
func (r *SongRepository) ListByIDs(ctx context.Context, ids []int64) ([]mood.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, songSelect+` WHERE s.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying songs by id: %w", err)
	}
	songs, err := collectSongs(rows)
	if err != nil {
		return nil, err
	}
	return store.OrderByIDs(songs, ids), nil
}

// Count returns the number of songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return n, nil
}
