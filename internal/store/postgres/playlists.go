package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
)

// PlaylistRepository handles playlist database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Save upserts a playlist and replaces its song entries.
func (r *PlaylistRepository) Save(ctx context.Context, p *playlist.Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO playlists (id, user_id, analysis_id, name, description, public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			analysis_id = EXCLUDED.analysis_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			public = EXCLUDED.public
	`, p.ID, p.UserID, p.AnalysisID, p.Name, p.Description, p.Public, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting playlist: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_songs WHERE playlist_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clearing playlist songs: %w", err)
	}

	if len(p.Entries) > 0 {
		positions := make([]int32, len(p.Entries))
		songIDs := make([]int64, len(p.Entries))
		addedAt := make([]time.Time, len(p.Entries))
		for i, e := range p.Entries {
			positions[i] = int32(e.Position)
			songIDs[i] = e.SongID
			addedAt[i] = e.AddedAt
			if addedAt[i].IsZero() {
				addedAt[i] = now
			}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO playlist_songs (playlist_id, position, song_id, added_at)
			SELECT $1, * FROM unnest($2::int[], $3::bigint[], $4::timestamptz[])
		`, p.ID, positions, songIDs, addedAt)
		if err != nil {
			return fmt.Errorf("inserting playlist songs: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a playlist with its entries ordered by position.
func (r *PlaylistRepository) Get(ctx context.Context, id uuid.UUID) (*playlist.Playlist, error) {
	query := `
		SELECT id, user_id, analysis_id, name, description, public, created_at
		FROM playlists
		WHERE id = $1
	`
	var p playlist.Playlist
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.UserID,
		&p.AnalysisID,
		&p.Name,
		&p.Description,
		&p.Public,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}

	entries, err := r.entries(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	p.Entries = entries[p.ID]
	return &p, nil
}

// ListForUser retrieves a user's playlists, newest first.
func (r *PlaylistRepository) ListForUser(ctx context.Context, userID int64) ([]playlist.Playlist, error) {
	query := `
		SELECT id, user_id, analysis_id, name, description, public, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var playlists []playlist.Playlist
	for rows.Next() {
		var p playlist.Playlist
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.AnalysisID,
			&p.Name,
			&p.Description,
			&p.Public,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating playlists: %w", err)
	}
	if len(playlists) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
	}
	entries, err := r.entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].Entries = entries[playlists[i].ID]
	}
	return playlists, nil
}

func (r *PlaylistRepository) entries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]playlist.Entry, error) {
	query := `
		SELECT playlist_id, song_id, position, added_at
		FROM playlist_songs
		WHERE playlist_id = ANY($1)
		ORDER BY playlist_id, position
	`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("querying playlist songs: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]playlist.Entry, len(ids))
	for rows.Next() {
		var (
			playlistID uuid.UUID
			e          playlist.Entry
		)
		if err := rows.Scan(&playlistID, &e.SongID, &e.Position, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning playlist song: %w", err)
		}
		out[playlistID] = append(out[playlistID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating playlist songs: %w", err)
	}
	return out, nil
}
