package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/lastfm"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/spotify"
	"github.com/justestif/go-moodbeats/internal/store"
)

// DefaultConcurrency bounds concurrent tag lookups.
const DefaultConcurrency = 5

// TrackSource abstracts the Spotify client for testing.
type TrackSource interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.Track, error)
	FetchAudioFeatures(ctx context.Context, tracks []spotify.Track) error
}

// TagSource abstracts the Last.fm client for testing.
type TagSource interface {
	TopTags(ctx context.Context, artist, track string) ([]lastfm.Tag, error)
}

// Importer copies a Spotify playlist into the song catalog.
type Importer struct {
	tracks      TrackSource
	tags        TagSource
	store       store.Store
	concurrency int
	logger      *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithTags enables genre tagging through Last.fm.
func WithTags(tags TagSource) Option {
	return func(im *Importer) { im.tags = tags }
}

// WithConcurrency sets the number of concurrent tag lookups.
func WithConcurrency(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// NewImporter creates an Importer writing to s.
func NewImporter(tracks TrackSource, s store.Store, opts ...Option) *Importer {
	im := &Importer{
		tracks:      tracks,
		store:       s,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import fetches a playlist, places every track in mood space from its audio
// features and upserts it. Tracks without audio features or with invalid
// values are skipped.
func (im *Importer) Import(ctx context.Context, playlistID string) (Stats, error) {
	var stats Stats

	tracks, err := im.tracks.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return stats, err
	}
	if err := im.tracks.FetchAudioFeatures(ctx, tracks); err != nil {
		return stats, err
	}

	genres, err := im.store.Genres().List(ctx)
	if err != nil {
		return stats, fmt.Errorf("loading genres: %w", err)
	}

	tags, err := im.fetchTags(ctx, tracks)
	if err != nil {
		return stats, err
	}

	for i, t := range tracks {
		if t.Features == nil {
			im.logger.Debug("skipping track without audio features", zap.String("track_id", t.ID))
			stats.Skipped++
			continue
		}

		song := songFromTrack(t)
		if g, ok := resolveGenre(tags[i], song.Mood, genres); ok {
			song.GenreID = &g.ID
		}

		if err := im.store.Songs().Upsert(ctx, &song); err != nil {
			if errors.Is(err, mood.ErrInvalidArgument) || errors.Is(err, mood.ErrOutOfRange) {
				im.logger.Warn("skipping invalid track", zap.String("track_id", t.ID), zap.Error(err))
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("importing %q: %w", song.DisplayName(), err)
		}
		stats.Songs++
	}

	im.logger.Info("imported playlist",
		zap.String("playlist_id", playlistID),
		zap.Int("songs", stats.Songs),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// fetchTags looks up tag names for every track with a bounded worker pool.
// Results are in track order. A failed lookup yields no tags.
func (im *Importer) fetchTags(ctx context.Context, tracks []spotify.Track) ([][]string, error) {
	results := make([][]string, len(tracks))
	if im.tags == nil || len(tracks) == 0 {
		return results, nil
	}

	workCh := make(chan int, len(tracks))
	for i := range tracks {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for w := 0; w < im.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					continue
				}
				t := tracks[i]
				tags, err := im.tags.TopTags(ctx, firstArtist(t.Artist), t.Title)
				if err != nil {
					im.logger.Warn("fetching tags", zap.String("track_id", t.ID), zap.Error(err))
					continue
				}
				results[i] = lastfm.Names(tags)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func songFromTrack(t spotify.Track) mood.Song {
	s := mood.Song{
		Title:      t.Title,
		Artist:     t.Artist,
		Mood:       t.Features.Mood(),
		TempoBPM:   t.Features.TempoBPM(),
		SpotifyID:  t.ID,
		PreviewURL: t.PreviewURL,
		Explicit:   t.Explicit,
	}
	if t.DurationMs > 0 {
		d := t.DurationMs
		s.DurationMs = &d
	}
	return s
}

// resolveGenre prefers a genre named by the tags, then the genre that
// contains v with the best compatibility score.
func resolveGenre(tags []string, v mood.Vector, genres []mood.Genre) (mood.Genre, bool) {
	if g, ok := MatchAny(tags, genres); ok {
		return g, true
	}

	var (
		best  mood.Genre
		score float64
		found bool
	)
	for _, g := range genres {
		if !g.IsCompatible(v) {
			continue
		}
		if s := g.CompatibilityScore(v); !found || s > score {
			best, score, found = g, s, true
		}
	}
	return best, found
}

// firstArtist returns the lead artist of a comma-separated list.
func firstArtist(artists string) string {
	lead, _, _ := strings.Cut(artists, ",")
	return strings.TrimSpace(lead)
}
