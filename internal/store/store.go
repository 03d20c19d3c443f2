// Package store defines persistence for MoodBeats: users, the genre and song
// catalog, analyses with their recommendations, and playlists.
//
// Drivers live in subpackages (postgres, sqlite) and share the contract
// exercised by storetest.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// Store exposes one repository per aggregate.
type Store interface {
	Users() UserRepository
	Genres() GenreRepository
	Songs() SongRepository
	Analyses() AnalysisRepository
	Playlists() PlaylistRepository
	Close() error
}

// Migrator is implemented by drivers that can create their schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// UserRepository handles users.
type UserRepository interface {
	// Ensure returns the user with username, creating it if missing.
	Ensure(ctx context.Context, username string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// GenreRepository handles the genre catalog.
type GenreRepository interface {
	// Upsert inserts or updates by name and sets g.ID.
	Upsert(ctx context.Context, g *mood.Genre) error
	GetByName(ctx context.Context, name string) (*mood.Genre, error)
	// List returns all genres ordered by name.
	List(ctx context.Context) ([]mood.Genre, error)
}

// SongRepository handles the song catalog.
type SongRepository interface {
	// Upsert inserts or updates by (title, artist) and sets s.ID.
	Upsert(ctx context.Context, s *mood.Song) error
	Get(ctx context.Context, id int64) (*mood.Song, error)
	// List returns all songs ordered by ID, with GenreName filled in.
	List(ctx context.Context) ([]mood.Song, error)
	// ListByIDs returns the songs that exist among ids, in ids order.
	ListByIDs(ctx context.Context, ids []int64) ([]mood.Song, error)
	Count(ctx context.Context) (int, error)
}

// AnalysisRepository handles analyses and the recommendations made from them.
type AnalysisRepository interface {
	// Create stores a and recs atomically, assigning IDs where unset.
	Create(ctx context.Context, a *Analysis, recs []Recommendation) error
	Get(ctx context.Context, id uuid.UUID) (*Analysis, error)
	// Recommendations returns the analysis' recommendations ordered by rank.
	Recommendations(ctx context.Context, analysisID uuid.UUID) ([]Recommendation, error)
	GetRecommendation(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	// SaveRating persists Rating and Feedback of rec.
	SaveRating(ctx context.Context, rec *Recommendation) error
}

// PlaylistRepository handles playlists and their entries.
type PlaylistRepository interface {
	// Save inserts or updates p and replaces its entries.
	Save(ctx context.Context, p *playlist.Playlist) error
	Get(ctx context.Context, id uuid.UUID) (*playlist.Playlist, error)
	ListForUser(ctx context.Context, userID int64) ([]playlist.Playlist, error)
}

// OrderByIDs arranges songs in ids order, skipping ids with no song.
func OrderByIDs(songs []mood.Song, ids []int64) []mood.Song {
	byID := make(map[int64]mood.Song, len(songs))
	for _, s := range songs {
		byID[s.ID] = s
	}
	out := make([]mood.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
