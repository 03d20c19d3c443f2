package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// Track is a playlist track with the metadata the catalog keeps.
type Track struct {
	ID         string
	Title      string
	Artist     string // comma-separated artist names
	DurationMs int64
	Explicit   bool
	PreviewURL string
	Features   *AudioFeatures // nil until fetched or when Spotify has none
}

// PlaylistTracks retrieves every track of a playlist.
// Local files and podcast episodes are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track

	// 100 is the max page size for playlist items
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(100))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	for {
		for _, item := range page.Items {
			if t, ok := convertItem(item); ok {
				tracks = append(tracks, t)
			}
		}

		fmt.Printf("Fetched %d tracks...\n", len(tracks))

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	fmt.Printf("Fetched %d tracks total.\n", len(tracks))
	return tracks, nil
}

// convertItem converts a playlist item to a Track.
func convertItem(item spotify.PlaylistItem) (Track, bool) {
	ft := item.Track.Track
	if item.IsLocal || ft == nil || ft.ID == "" {
		return Track{}, false
	}

	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:         ft.ID.String(),
		Title:      ft.Name,
		Artist:     strings.Join(artists, ", "),
		DurationMs: int64(ft.Duration),
		Explicit:   ft.Explicit,
		PreviewURL: ft.PreviewURL,
	}, true
}
