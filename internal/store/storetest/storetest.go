// Package storetest holds the behavior every store.Store driver must share.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
)

// Opener returns a fresh, empty, migrated store. Run closes it.
type Opener func(t *testing.T) store.Store

// Run exercises every repository of the store returned by open.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users", testUsers},
		{"Genres", testGenres},
		{"Songs", testSongs},
		{"Analyses", testAnalyses},
		{"Playlists", testPlaylists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustGenre(t *testing.T, s store.Store, name string, e, v, a mood.Range) mood.Genre {
	t.Helper()
	g := mood.Genre{Name: name, Energy: e, Valence: v, Arousal: a}
	if err := s.Genres().Upsert(context.Background(), &g); err != nil {
		t.Fatalf("Genres().Upsert(%q): %v", name, err)
	}
	return g
}

func mustSong(t *testing.T, s store.Store, title, artist string, genreID *int64, v mood.Vector) mood.Song {
	t.Helper()
	song := mood.Song{Title: title, Artist: artist, GenreID: genreID, Mood: v}
	if err := s.Songs().Upsert(context.Background(), &song); err != nil {
		t.Fatalf("Songs().Upsert(%q): %v", title, err)
	}
	return song
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	u1, err := s.Users().Ensure(ctx, "alice")
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	u2, err := s.Users().Ensure(ctx, "alice")
	if err != nil {
		t.Fatalf("Ensure() second call error: %v", err)
	}
	if u1.ID == 0 || u1.ID != u2.ID {
		t.Errorf("Ensure() IDs = %d, %d; want same non-zero", u1.ID, u2.ID)
	}

	demo, err := s.Users().Ensure(ctx, "  ")
	if err != nil {
		t.Fatalf("Ensure(blank) error: %v", err)
	}
	if demo.Username != store.DefaultUsername {
		t.Errorf("Ensure(blank) username = %q, want %q", demo.Username, store.DefaultUsername)
	}

	got, err := s.Users().GetByUsername(ctx, "alice")
	if err != nil || got.ID != u1.ID {
		t.Errorf("GetByUsername() = %v, %v", got, err)
	}
	if _, err := s.Users().GetByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByUsername(missing) error = %v, want ErrNotFound", err)
	}
}

func testGenres(t *testing.T, s store.Store) {
	ctx := context.Background()
	full := mood.FullRange()

	rock := mustGenre(t, s, "rock", mood.Range{Min: 6, Max: 10}, full, mood.Range{Min: 5, Max: 10})
	mustGenre(t, s, "ambient", mood.Range{Min: 1, Max: 3}, full, mood.Range{Min: 1, Max: 3})

	updated := mood.Genre{Name: "rock", Characteristics: "guitars", Energy: mood.Range{Min: 7, Max: 10}, Valence: full, Arousal: full}
	if err := s.Genres().Upsert(ctx, &updated); err != nil {
		t.Fatalf("Upsert(update) error: %v", err)
	}
	if updated.ID != rock.ID {
		t.Errorf("upsert by name changed ID: %d -> %d", rock.ID, updated.ID)
	}

	got, err := s.Genres().GetByName(ctx, "ROCK")
	if err != nil {
		t.Fatalf("GetByName() error: %v", err)
	}
	if got.Characteristics != "guitars" || got.Energy != (mood.Range{Min: 7, Max: 10}) {
		t.Errorf("GetByName() = %+v, want updated fields", got)
	}

	list, err := s.Genres().List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var names []string
	for _, g := range list {
		names = append(names, g.Name)
	}
	if !slices.Equal(names, []string{"ambient", "rock"}) {
		t.Errorf("List() names = %v, want [ambient rock]", names)
	}

	bad := mood.Genre{Name: "broken", Energy: mood.Range{Min: 8, Max: 2}, Valence: full, Arousal: full}
	if err := s.Genres().Upsert(ctx, &bad); !errors.Is(err, mood.ErrOutOfRange) {
		t.Errorf("Upsert(invalid) error = %v, want ErrOutOfRange", err)
	}
	if _, err := s.Genres().GetByName(ctx, "jazz"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByName(missing) error = %v, want ErrNotFound", err)
	}
}

func testSongs(t *testing.T, s store.Store) {
	ctx := context.Background()
	full := mood.FullRange()
	pop := mustGenre(t, s, "pop", full, full, full)

	a := mustSong(t, s, "Alpha", "Artist A", &pop.ID, mood.NewVector(8, 7, 9))
	b := mustSong(t, s, "Beta", "Artist B", nil, mood.NewVector(2, 2, 3))

	tempo := 128
	again := mood.Song{Title: "Alpha", Artist: "Artist A", GenreID: &pop.ID, Mood: mood.NewVector(7, 7, 9), TempoBPM: &tempo, Explicit: true}
	if err := s.Songs().Upsert(ctx, &again); err != nil {
		t.Fatalf("Upsert(update) error: %v", err)
	}
	if again.ID != a.ID {
		t.Errorf("upsert by (title, artist) changed ID: %d -> %d", a.ID, again.ID)
	}

	n, err := s.Songs().Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v; want 2", n, err)
	}

	got, err := s.Songs().Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Mood != mood.NewVector(7, 7, 9) || got.TempoBPM == nil || *got.TempoBPM != 128 || !got.Explicit {
		t.Errorf("Get() = %+v, want updated fields", got)
	}
	if got.GenreName != "pop" {
		t.Errorf("GenreName = %q, want pop", got.GenreName)
	}

	list, err := s.Songs().List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Errorf("List() = %v, want [Alpha Beta] by id", list)
	}
	if list[1].GenreID != nil || list[1].GenreName != "" {
		t.Errorf("song without genre came back with %v / %q", list[1].GenreID, list[1].GenreName)
	}

	byIDs, err := s.Songs().ListByIDs(ctx, []int64{b.ID, 9999, a.ID})
	if err != nil {
		t.Fatalf("ListByIDs() error: %v", err)
	}
	if len(byIDs) != 2 || byIDs[0].ID != b.ID || byIDs[1].ID != a.ID {
		t.Errorf("ListByIDs() = %v, want [Beta Alpha]", byIDs)
	}

	if _, err := s.Songs().Get(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	invalid := mood.Song{Title: "", Artist: "x", Mood: mood.Neutral()}
	if err := s.Songs().Upsert(ctx, &invalid); !errors.Is(err, mood.ErrInvalidArgument) {
		t.Errorf("Upsert(invalid) error = %v, want ErrInvalidArgument", err)
	}
}

func testAnalyses(t *testing.T, s store.Store) {
	ctx := context.Background()
	user, err := s.Users().Ensure(ctx, "bob")
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	full := mood.FullRange()
	g := mustGenre(t, s, "indie", full, full, full)
	s1 := mustSong(t, s, "One", "X", &g.ID, mood.NewVector(5, 5, 5))
	s2 := mustSong(t, s, "Two", "Y", &g.ID, mood.NewVector(6, 5, 5))

	energy := 7
	a := &store.Analysis{
		UserID:            user.ID,
		Description:       "kind of upbeat",
		Emotions:          []string{"content", "curious"},
		Energy:            &energy,
		RecommendedGenres: []string{"indie"},
		Insight:           "mostly fine",
		Raw:               `{"energy_level":7}`,
	}
	recs := []store.Recommendation{
		{UserID: user.ID, SongID: s2.ID, Score: 0.8, Reason: "second", Rank: 2},
		{UserID: user.ID, SongID: s1.ID, Score: 0.9, Reason: "first", Rank: 1},
	}
	if err := s.Analyses().Create(ctx, a, recs); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.ID == uuid.Nil || recs[0].ID == uuid.Nil || recs[0].AnalysisID != a.ID {
		t.Fatal("Create() did not assign IDs")
	}

	got, err := s.Analyses().Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Energy == nil || *got.Energy != 7 || got.Arousal != nil || got.Valence != nil {
		t.Errorf("levels = %v/%v/%v, want 7/nil/nil", got.Energy, got.Arousal, got.Valence)
	}
	if !slices.Equal(got.Emotions, a.Emotions) || !slices.Equal(got.RecommendedGenres, a.RecommendedGenres) {
		t.Errorf("lists = %v / %v", got.Emotions, got.RecommendedGenres)
	}
	if got.Raw != a.Raw || got.Insight != a.Insight || got.UserID != user.ID {
		t.Errorf("Get() = %+v", got)
	}

	stored, err := s.Analyses().Recommendations(ctx, a.ID)
	if err != nil {
		t.Fatalf("Recommendations() error: %v", err)
	}
	if len(stored) != 2 || stored[0].Reason != "first" || stored[1].Reason != "second" {
		t.Errorf("Recommendations() = %+v, want ordered by rank", stored)
	}

	rec := stored[1]
	if err := rec.Rate(5, "great pick"); err != nil {
		t.Fatal(err)
	}
	if err := s.Analyses().SaveRating(ctx, &rec); err != nil {
		t.Fatalf("SaveRating() error: %v", err)
	}
	rated, err := s.Analyses().GetRecommendation(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecommendation() error: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 || rated.Feedback != "great pick" {
		t.Errorf("rating not persisted: %+v", rated)
	}

	missing := store.Recommendation{ID: uuid.New()}
	if err := s.Analyses().SaveRating(ctx, &missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SaveRating(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Analyses().Get(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Analyses().GetRecommendation(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetRecommendation(missing) error = %v, want ErrNotFound", err)
	}
}

func testPlaylists(t *testing.T, s store.Store) {
	ctx := context.Background()
	user, err := s.Users().Ensure(ctx, "carol")
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	var ids []int64
	for _, title := range []string{"A", "B", "C"} {
		ids = append(ids, mustSong(t, s, title, "Band", nil, mood.Neutral()).ID)
	}

	p, err := playlist.New(user.ID, "Road trip", "long drive")
	if err != nil {
		t.Fatal(err)
	}
	a := &store.Analysis{UserID: user.ID, Description: "open road"}
	if err := s.Analyses().Create(ctx, a, nil); err != nil {
		t.Fatalf("Analyses().Create() error: %v", err)
	}
	analysisID := a.ID
	p.AnalysisID = &analysisID
	for _, id := range ids {
		if p, err = p.Append(id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Playlists().Save(ctx, &p); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Playlists().Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !slices.Equal(got.SongIDs(), ids) {
		t.Errorf("SongIDs() = %v, want %v", got.SongIDs(), ids)
	}
	if got.Name != "Road trip" || got.AnalysisID == nil || *got.AnalysisID != analysisID {
		t.Errorf("Get() = %+v", got)
	}

	shorter, err := got.Remove(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	shorter.Name = "Short trip"
	if err := s.Playlists().Save(ctx, &shorter); err != nil {
		t.Fatalf("Save(update) error: %v", err)
	}
	got, err = s.Playlists().Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !slices.Equal(got.SongIDs(), ids[1:]) || got.Name != "Short trip" {
		t.Errorf("after update: %q %v", got.Name, got.SongIDs())
	}
	for i, e := range got.Entries {
		if e.Position != i+1 {
			t.Errorf("entry %d position = %d", i, e.Position)
		}
	}

	empty, err := playlist.New(user.ID, "Empty", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Playlists().Save(ctx, &empty); err != nil {
		t.Fatalf("Save(empty) error: %v", err)
	}

	list, err := s.Playlists().ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser() error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("ListForUser() returned %d playlists, want 2", len(list))
	}

	if _, err := s.Playlists().Get(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}
