package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
)

// PlaylistRequest creates a playlist, optionally seeded from an analysis.
type PlaylistRequest struct {
	Username    string
	Name        string // defaults to the analysis mood title
	Description string
	Public      bool
	AnalysisID  *uuid.UUID
}

// PlaylistView is a playlist with its songs in position order.
type PlaylistView struct {
	Playlist playlist.Playlist
	Songs    []mood.Song
}

// TotalDurationMs sums the known song durations.
func (v *PlaylistView) TotalDurationMs() int64 {
	return playlist.TotalDurationMs(v.Songs)
}

// FormattedDuration renders the total duration.
func (v *PlaylistView) FormattedDuration() string {
	return playlist.FormatDuration(v.TotalDurationMs())
}

// CreatePlaylist creates an empty playlist, or one holding an analysis'
// recommendations in rank order.
func (s *Service) CreatePlaylist(ctx context.Context, req PlaylistRequest) (*PlaylistView, error) {
	user, err := s.store.Users().Ensure(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	description := req.Description
	var songIDs []int64

	if req.AnalysisID != nil {
		a, err := s.store.Analyses().Get(ctx, *req.AnalysisID)
		if err != nil {
			return nil, fmt.Errorf("getting analysis: %w", err)
		}
		recs, err := s.store.Analyses().Recommendations(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("getting recommendations: %w", err)
		}
		for _, r := range recs {
			songIDs = append(songIDs, r.SongID)
		}
		if name == "" {
			name = playlist.Playlist{}.MoodTitle(a.Description)
		}
		if strings.TrimSpace(description) == "" {
			description = a.Insight
		}
	}

	p, err := playlist.New(user.ID, name, description)
	if err != nil {
		return nil, err
	}
	p.Public = req.Public
	p.AnalysisID = req.AnalysisID

	for _, id := range songIDs {
		if p, err = p.Append(id); err != nil {
			return nil, err
		}
	}

	if err := s.store.Playlists().Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("saving playlist: %w", err)
	}

	s.logger.Info("playlist created",
		zap.String("playlist_id", p.ID.String()),
		zap.String("username", user.Username),
		zap.Int("songs", p.Len()),
	)
	return s.view(ctx, p)
}

// GetPlaylist loads a playlist with its songs.
func (s *Service) GetPlaylist(ctx context.Context, id uuid.UUID) (*PlaylistView, error) {
	p, err := s.store.Playlists().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	return s.view(ctx, *p)
}

// AddSongToPlaylist inserts a catalog song at position, or appends it when
// position is 0.
func (s *Service) AddSongToPlaylist(ctx context.Context, playlistID uuid.UUID, songID int64, position int) (*PlaylistView, error) {
	p, err := s.store.Playlists().Get(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	if _, err := s.store.Songs().Get(ctx, songID); err != nil {
		return nil, fmt.Errorf("getting song %d: %w", songID, err)
	}

	var updated playlist.Playlist
	if position == 0 {
		updated, err = p.Append(songID)
	} else {
		updated, err = p.InsertAt(songID, position)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Playlists().Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("saving playlist: %w", err)
	}
	return s.view(ctx, updated)
}

// RemoveSongFromPlaylist removes a song and closes the gap.
func (s *Service) RemoveSongFromPlaylist(ctx context.Context, playlistID uuid.UUID, songID int64) (*PlaylistView, error) {
	p, err := s.store.Playlists().Get(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("getting playlist: %w", err)
	}
	updated, err := p.Remove(songID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Playlists().Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("saving playlist: %w", err)
	}
	return s.view(ctx, updated)
}

// ListPlaylists returns the user's playlists, newest first. An unknown user
// has no playlists and is not created.
func (s *Service) ListPlaylists(ctx context.Context, username string) ([]*PlaylistView, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = store.DefaultUsername
	}
	user, err := s.store.Users().GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return []*PlaylistView{}, nil
	}
	if err != nil {
		return nil, err
	}

	playlists, err := s.store.Playlists().ListForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	views := make([]*PlaylistView, 0, len(playlists))
	for _, p := range playlists {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) view(ctx context.Context, p playlist.Playlist) (*PlaylistView, error) {
	songs, err := s.store.Songs().ListByIDs(ctx, p.SongIDs())
	if err != nil {
		return nil, fmt.Errorf("loading playlist songs: %w", err)
	}
	return &PlaylistView{Playlist: p.Sorted(), Songs: songs}, nil
}
