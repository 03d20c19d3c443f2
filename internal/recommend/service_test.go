package recommend

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/catalog"
	"github.com/justestif/go-moodbeats/internal/clustering"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
	"github.com/justestif/go-moodbeats/internal/store/sqlite"
)

const upbeatReply = `Here you go: {
  "primary_emotions": ["joy", "excitement"],
  "energy_level": 9,
  "arousal_level": 8,
  "valence": 9,
  "music_characteristics": {
    "tempo_range": "fast",
    "recommended_genres": ["Pop", "dance"],
    "instrumentation": "bright synths",
    "mood_tags": ["uplifting"]
  },
  "insight": "You are riding a high."
}`

const intenseReply = `{
  "primary_emotions": ["determination"],
  "energy_level": 9, "arousal_level": 9, "valence": 4,
  "music_characteristics": {"recommended_genres": ["hip hop"]},
  "insight": "Focused and fired up."
}`

const incompleteReply = `{
  "primary_emotions": ["confused"],
  "arousal_level": 5, "valence": 5,
  "music_characteristics": {"recommended_genres": ["jazz"]},
  "insight": "Hard to say."
}`

type fakeCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

func newService(t *testing.T, c *fakeCompleter) (*Service, store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.Open(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if _, err := catalog.Seed(ctx, s); err != nil {
		t.Fatalf("catalog.Seed() error: %v", err)
	}

	logger := zaptest.NewLogger(t)
	a := analysis.NewAnalyzer(c, analysis.WithLogger(logger))
	return New(s, a, WithLogger(logger)), s
}

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, &fakeCompleter{reply: upbeatReply})

	resp, err := svc.Recommend(ctx, Request{
		Username:    "alice",
		Description: "  Just aced my exam and the sun is out  ",
		Context:     "celebrating",
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	a := resp.Analysis
	if a.Description != "Just aced my exam and the sun is out" {
		t.Errorf("Description = %q, want trimmed", a.Description)
	}
	if a.Fallback {
		t.Error("Fallback = true, want false")
	}
	if got := resp.Summary(); got != "Energy: 9, Arousal: 8, Valence: 9" {
		t.Errorf("Summary() = %q", got)
	}

	if len(resp.Recommendations) == 0 || len(resp.Recommendations) > mood.DefaultLimit {
		t.Fatalf("got %d recommendations, want 1..%d", len(resp.Recommendations), mood.DefaultLimit)
	}
	for i, item := range resp.Recommendations {
		if item.Rank != i+1 {
			t.Errorf("item %d Rank = %d", i, item.Rank)
		}
		if item.Score < mood.CompatibilityThreshold {
			t.Errorf("item %q score %.2f below threshold", item.Song.Title, item.Score)
		}
		if i > 0 && item.Score > resp.Recommendations[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
		if item.Song.Explicit {
			t.Errorf("explicit song %q included", item.Song.Title)
		}
		if item.Reason == "" || item.Strength() == "" {
			t.Errorf("item %q missing reason or strength", item.Song.Title)
		}
	}

	if len(resp.Genres) == 0 || resp.Genres[0] != "pop" {
		t.Errorf("Genres = %v, want pop first", resp.Genres)
	}
	if !slices.Contains(resp.Genres, "electronic") {
		t.Errorf("Genres = %v, want electronic from mood compatibility", resp.Genres)
	}

	got, err := svc.GetAnalysis(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAnalysis() error: %v", err)
	}
	if len(got.Recommendations) != len(resp.Recommendations) {
		t.Fatalf("GetAnalysis() has %d recommendations, want %d", len(got.Recommendations), len(resp.Recommendations))
	}
	for i := range got.Recommendations {
		if got.Recommendations[i].ID != resp.Recommendations[i].ID ||
			got.Recommendations[i].Song.ID != resp.Recommendations[i].Song.ID {
			t.Errorf("recommendation %d differs after reload", i)
		}
	}
	if !slices.Equal(got.Genres, resp.Genres) {
		t.Errorf("reloaded Genres = %v, want %v", got.Genres, resp.Genres)
	}
}

func TestRecommendLimitAndExplicit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, &fakeCompleter{reply: intenseReply})

	resp, err := svc.Recommend(ctx, Request{Description: "Ready to run through a wall", Limit: 3})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("got %d recommendations, want 3", len(resp.Recommendations))
	}
	for _, item := range resp.Recommendations {
		if item.Song.Explicit {
			t.Errorf("explicit song %q included", item.Song.Title)
		}
	}

	resp, err = svc.Recommend(ctx, Request{Description: "Ready to run through a wall", Limit: 3, IncludeExplicit: true})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if top := resp.Recommendations[0].Song; top.Title != "Lose Yourself" {
		t.Errorf("top song = %q, want Lose Yourself", top.Title)
	}
	if resp.Genres[0] != "hip-hop" {
		t.Errorf("Genres = %v, want hip-hop first", resp.Genres)
	}
}

func TestRecommendFallback(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, &fakeCompleter{err: errors.New("upstream down")})

	resp, err := svc.Recommend(ctx, Request{Description: "feeling somewhat okay"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if !resp.Analysis.Fallback || resp.Analysis.Insight != analysis.FallbackInsight {
		t.Errorf("Analysis = %+v, want fallback", resp.Analysis)
	}
	if resp.Summary() != "Energy: 5, Arousal: 5, Valence: 5" {
		t.Errorf("Summary() = %q", resp.Summary())
	}
	if resp.Analysis.UserID == 0 {
		t.Error("analysis not attached to demo user")
	}
}

func TestRecommendIncompleteAnalysis(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, &fakeCompleter{reply: incompleteReply})

	resp, err := svc.Recommend(ctx, Request{Description: "not sure how I feel"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want none", len(resp.Recommendations))
	}
	if resp.Analysis.Energy != nil {
		t.Errorf("Energy = %d, want nil", *resp.Analysis.Energy)
	}
	if !slices.Equal(resp.Genres, []string{"jazz"}) {
		t.Errorf("Genres = %v, want [jazz]", resp.Genres)
	}

	got, err := svc.GetAnalysis(ctx, resp.Analysis.ID)
	if err != nil {
		t.Fatalf("GetAnalysis() error: %v", err)
	}
	if got.Analysis.Energy != nil || !strings.Contains(got.Summary(), "Energy: ?") {
		t.Errorf("reloaded Summary() = %q", got.Summary())
	}
}

func TestRecommendRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"short description", Request{Description: "meh"}},
		{"blank description", Request{Description: "     "}},
		{"long context", Request{Description: "fine thanks", Context: strings.Repeat("x", 101)}},
		{"negative limit", Request{Description: "fine thanks", Limit: -1}},
		{"limit too large", Request{Description: "fine thanks", Limit: MaxLimit + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCompleter{reply: upbeatReply}
			svc, s := newService(t, c)
			req := tt.req
			req.Username = "mallory"
			_, err := svc.Recommend(context.Background(), req)
			if !errors.Is(err, mood.ErrInvalidArgument) {
				t.Errorf("Recommend() error = %v, want ErrInvalidArgument", err)
			}
			if n := c.calls.Load(); n != 0 {
				t.Errorf("completer called %d times", n)
			}
			if _, err := s.Users().GetByUsername(context.Background(), "mallory"); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("GetByUsername() error = %v, want ErrNotFound for rejected request", err)
			}
		})
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	svc, _ := newService(t, &fakeCompleter{reply: upbeatReply})
	if _, err := svc.GetAnalysis(context.Background(), uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetAnalysis() error = %v, want ErrNotFound", err)
	}
}

func TestRateRecommendation(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t, &fakeCompleter{reply: upbeatReply})

	resp, err := svc.Recommend(ctx, Request{Description: "sunny and happy today"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	id := resp.Recommendations[0].ID

	rec, err := svc.RateRecommendation(ctx, id, 5, "  perfect  ")
	if err != nil {
		t.Fatalf("RateRecommendation() error: %v", err)
	}
	if rec.RatingDescription() != "Loved it" || rec.Feedback != "perfect" {
		t.Errorf("rated = %+v", rec)
	}

	stored, err := s.Analyses().GetRecommendation(ctx, id)
	if err != nil {
		t.Fatalf("GetRecommendation() error: %v", err)
	}
	if stored.Rating == nil || *stored.Rating != 5 {
		t.Errorf("stored rating = %v, want 5", stored.Rating)
	}

	if _, err := svc.RateRecommendation(ctx, id, 6, ""); !errors.Is(err, mood.ErrInvalidArgument) {
		t.Errorf("rating 6 error = %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.RateRecommendation(ctx, uuid.New(), 3, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestPlaylistFromAnalysis(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t, &fakeCompleter{reply: upbeatReply})

	resp, err := svc.Recommend(ctx, Request{Username: "bob", Description: "dancing around the kitchen at midnight with friends"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	analysisID := resp.Analysis.ID

	view, err := svc.CreatePlaylist(ctx, PlaylistRequest{Username: "bob", AnalysisID: &analysisID})
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	if want := "Mood: dancing around the kitchen at midnight with fri..."; view.Playlist.Name != want {
		t.Errorf("Name = %q, want %q", view.Playlist.Name, want)
	}
	if view.Playlist.Description != "You are riding a high." {
		t.Errorf("Description = %q", view.Playlist.Description)
	}

	var wantIDs []int64
	for _, item := range resp.Recommendations {
		wantIDs = append(wantIDs, item.Song.ID)
	}
	if !slices.Equal(view.Playlist.SongIDs(), wantIDs) {
		t.Errorf("SongIDs() = %v, want %v", view.Playlist.SongIDs(), wantIDs)
	}
	if len(view.Songs) != len(wantIDs) || view.TotalDurationMs() == 0 || view.FormattedDuration() == "0:00" {
		t.Errorf("view songs = %d, duration %s", len(view.Songs), view.FormattedDuration())
	}

	got, err := svc.GetPlaylist(ctx, view.Playlist.ID)
	if err != nil {
		t.Fatalf("GetPlaylist() error: %v", err)
	}
	if !slices.Equal(got.Playlist.SongIDs(), wantIDs) {
		t.Errorf("reloaded SongIDs() = %v, want %v", got.Playlist.SongIDs(), wantIDs)
	}

	user, _ := s.Users().GetByUsername(ctx, "bob")
	if got.Playlist.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", got.Playlist.UserID, user.ID)
	}
}

func TestPlaylistEditing(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t, &fakeCompleter{reply: upbeatReply})

	songs, err := s.Songs().List(ctx)
	if err != nil || len(songs) < 3 {
		t.Fatalf("List() = %d songs, %v", len(songs), err)
	}
	a, b, c := songs[0].ID, songs[1].ID, songs[2].ID

	view, err := svc.CreatePlaylist(ctx, PlaylistRequest{Name: "Road trip"})
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	id := view.Playlist.ID
	if view.Playlist.Len() != 0 {
		t.Errorf("new playlist has %d songs", view.Playlist.Len())
	}

	steps := []struct {
		name    string
		run     func() (*PlaylistView, error)
		wantErr error
		wantIDs []int64
	}{
		{"append", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, a, 0) }, nil, []int64{a}},
		{"append second", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, b, 0) }, nil, []int64{a, b}},
		{"insert first", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, c, 1) }, nil, []int64{c, a, b}},
		{"duplicate", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, a, 0) }, playlist.ErrDuplicateSong, nil},
		{"bad position", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, songs[3].ID, 9) }, playlist.ErrInvalidPosition, nil},
		{"unknown song", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, id, 99999, 0) }, store.ErrNotFound, nil},
		{"remove middle", func() (*PlaylistView, error) { return svc.RemoveSongFromPlaylist(ctx, id, a) }, nil, []int64{c, b}},
		{"remove missing", func() (*PlaylistView, error) { return svc.RemoveSongFromPlaylist(ctx, id, a) }, playlist.ErrSongNotInPlaylist, nil},
		{"unknown playlist", func() (*PlaylistView, error) { return svc.AddSongToPlaylist(ctx, uuid.New(), a, 0) }, store.ErrNotFound, nil},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			v, err := step.run()
			if !errors.Is(err, step.wantErr) {
				t.Fatalf("error = %v, want %v", err, step.wantErr)
			}
			if step.wantErr != nil {
				return
			}
			if !slices.Equal(v.Playlist.SongIDs(), step.wantIDs) {
				t.Errorf("SongIDs() = %v, want %v", v.Playlist.SongIDs(), step.wantIDs)
			}
			for i, e := range v.Playlist.Entries {
				if e.Position != i+1 {
					t.Errorf("entry %d Position = %d", i, e.Position)
				}
			}
		})
	}

	got, err := svc.GetPlaylist(ctx, id)
	if err != nil {
		t.Fatalf("GetPlaylist() error: %v", err)
	}
	if !slices.Equal(got.Playlist.SongIDs(), []int64{c, b}) {
		t.Errorf("persisted SongIDs() = %v", got.Playlist.SongIDs())
	}
}

func TestCreatePlaylistValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, &fakeCompleter{reply: upbeatReply})

	if _, err := svc.CreatePlaylist(ctx, PlaylistRequest{Name: "   "}); !errors.Is(err, mood.ErrInvalidArgument) {
		t.Errorf("blank name error = %v, want ErrInvalidArgument", err)
	}
	missing := uuid.New()
	if _, err := svc.CreatePlaylist(ctx, PlaylistRequest{AnalysisID: &missing}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown analysis error = %v, want ErrNotFound", err)
	}
}

func TestCatalogListingAndRegions(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t, &fakeCompleter{reply: upbeatReply})

	genres, err := svc.ListGenres(ctx)
	if err != nil || len(genres) == 0 {
		t.Fatalf("ListGenres() = %d, %v", len(genres), err)
	}
	songs, err := svc.ListSongs(ctx)
	if err != nil {
		t.Fatalf("ListSongs() error: %v", err)
	}
	n, _ := s.Songs().Count(ctx)
	if len(songs) != n {
		t.Errorf("ListSongs() = %d, want %d", len(songs), n)
	}

	res, err := svc.MoodRegions(ctx, clustering.DefaultRegionConfig())
	if err != nil {
		t.Fatalf("MoodRegions() error: %v", err)
	}
	total := res.OutlierCount
	for _, r := range res.Regions {
		total += len(r.Songs)
	}
	if res.TotalSongs != n || total != n {
		t.Errorf("regions cover %d of %d songs (TotalSongs %d)", total, n, res.TotalSongs)
	}
}

func TestResolveGenres(t *testing.T) {
	catalogGenres := []mood.Genre{
		{Name: "ambient", Energy: mood.Range{Min: 1, Max: 3}, Valence: mood.Range{Min: 4, Max: 7}, Arousal: mood.Range{Min: 1, Max: 3}},
		{Name: "hip-hop", Energy: mood.FullRange(), Valence: mood.FullRange(), Arousal: mood.FullRange()},
		{Name: "lo-fi", Energy: mood.Range{Min: 2, Max: 4}, Valence: mood.Range{Min: 4, Max: 7}, Arousal: mood.Range{Min: 1, Max: 4}},
		{Name: "pop", Energy: mood.Range{Min: 5, Max: 9}, Valence: mood.Range{Min: 6, Max: 10}, Arousal: mood.Range{Min: 5, Max: 8}},
	}
	lvl := func(v int) *int { return &v }

	tests := []struct {
		name string
		a    store.Analysis
		want []string
	}{
		{
			name: "fuzzy names then compatible by score",
			a: store.Analysis{
				RecommendedGenres: []string{"Hip Hop", "shoegaze", "hip-hop"},
				Energy:            lvl(2), Arousal: lvl(2), Valence: lvl(5),
			},
			want: []string{"hip-hop", "shoegaze", "ambient", "lo-fi"},
		},
		{
			name: "missing level skips compatibility",
			a:    store.Analysis{RecommendedGenres: []string{"POP"}, Energy: lvl(8)},
			want: []string{"pop"},
		},
		{
			name: "capped",
			a: store.Analysis{
				RecommendedGenres: []string{"a1", "b2", "c3", "d4", "e5", "f6"},
			},
			want: []string{"a1", "b2", "c3", "d4", "e5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveGenres(&tt.a, catalogGenres)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ResolveGenres() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListPlaylists(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t, &fakeCompleter{reply: upbeatReply})

	if _, err := svc.CreatePlaylist(ctx, PlaylistRequest{Username: "gina", Name: "Run Club"}); err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}

	views, err := svc.ListPlaylists(ctx, "  gina ")
	if err != nil {
		t.Fatalf("ListPlaylists() error: %v", err)
	}
	if len(views) != 1 || views[0].Playlist.Name != "Run Club" {
		t.Errorf("ListPlaylists() = %v, want [Run Club]", views)
	}

	views, err = svc.ListPlaylists(ctx, "stranger")
	if err != nil {
		t.Fatalf("ListPlaylists() error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("ListPlaylists(stranger) returned %d playlists", len(views))
	}
	if _, err := s.Users().GetByUsername(ctx, "stranger"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}
