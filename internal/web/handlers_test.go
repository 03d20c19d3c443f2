package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/catalog"
	"github.com/justestif/go-moodbeats/internal/recommend"
	"github.com/justestif/go-moodbeats/internal/store/sqlite"
)

const analysisReply = `{
  "primary_emotions": ["joy"],
  "energy_level": 8, "arousal_level": 7, "valence": 9,
  "music_characteristics": {"recommended_genres": ["pop"]},
  "insight": "A bright, social mood."
}`

type fakeCompleter struct{}

func (fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return analysisReply, nil
}

type testServer struct {
	t     *testing.T
	h     http.Handler
	store *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
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
	svc := recommend.New(s, analysis.NewAnalyzer(fakeCompleter{}, analysis.WithLogger(logger)), recommend.WithLogger(logger))
	srv := NewServer(ServerConfig{}, svc, logger)
	return &testServer{t: t, h: srv.Handler(), store: s}
}

func (ts *testServer) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthAndDemo(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d", w.Code)
	}
	health := decodeBody[map[string]string](t, w)
	if health["status"] != "UP" || health["service"] != "MoodBeats API" || health["version"] != "1.0.0" {
		t.Errorf("health = %v", health)
	}

	w = ts.do(http.MethodGet, "/mood/demo", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /mood/demo status = %d", w.Code)
	}
	demo := decodeBody[struct {
		Message      string   `json:"message"`
		ExampleMoods []string `json:"example_moods"`
		Features     []string `json:"features"`
	}](t, w)
	if demo.Message != "Welcome to MoodBeats!" || len(demo.ExampleMoods) != 5 || len(demo.Features) != 4 {
		t.Errorf("demo = %+v", demo)
	}
}

func TestAnalyzeMoodFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/mood/analyze",
		`{"moodDescription": "Great day with friends at the beach", "maxRecommendations": 5}`,
		UserHeader, "carol")
	if w.Code != http.StatusOK {
		t.Fatalf("POST /mood/analyze status = %d, body %s", w.Code, w.Body.String())
	}
	got := decodeBody[analysisResponse](t, w)

	if got.MoodSummary != "Energy: 8, Arousal: 7, Valence: 9" {
		t.Errorf("MoodSummary = %q", got.MoodSummary)
	}
	if len(got.Recommendations) == 0 || len(got.Recommendations) > 5 {
		t.Fatalf("got %d recommendations, want 1..5", len(got.Recommendations))
	}
	if got.RecommendedGenres[0] != "pop" {
		t.Errorf("RecommendedGenres = %v", got.RecommendedGenres)
	}
	first := got.Recommendations[0]
	if first.Rank != 1 || first.MatchStrength == "" || first.FormattedDuration == "" {
		t.Errorf("first recommendation = %+v", first)
	}

	w = ts.do(http.MethodGet, "/mood/analyses/"+got.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET analysis status = %d", w.Code)
	}
	reloaded := decodeBody[analysisResponse](t, w)
	if reloaded.ID != got.ID || len(reloaded.Recommendations) != len(got.Recommendations) {
		t.Errorf("reloaded = %+v", reloaded)
	}

	user, err := ts.store.Users().GetByUsername(context.Background(), "carol")
	if err != nil {
		t.Fatalf("user carol not created: %v", err)
	}
	if user.Username != "carol" {
		t.Errorf("Username = %q", user.Username)
	}

	ratePath := fmt.Sprintf("/recommendations/%s/rating", first.ID)
	w = ts.do(http.MethodPost, ratePath, `{"rating": 5, "feedback": "spot on"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("rating status = %d, body %s", w.Code, w.Body.String())
	}
	rated := decodeBody[ratingResponse](t, w)
	if rated.Rating == nil || *rated.Rating != 5 || rated.RatingDescription != "Loved it" {
		t.Errorf("rated = %+v", rated)
	}

	if w = ts.do(http.MethodPost, ratePath, `{"rating": 9}`); w.Code != http.StatusBadRequest {
		t.Errorf("rating 9 status = %d, want 400", w.Code)
	}
}

func TestAnalyzeMoodValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"moodDescription": `},
		{"unknown field", `{"mood": "happy days"}`},
		{"short description", `{"moodDescription": "ok"}`},
		{"zero limit", `{"moodDescription": "happy days", "maxRecommendations": 0}`},
		{"limit too large", `{"moodDescription": "happy days", "maxRecommendations": 51}`},
		{"long context", `{"moodDescription": "happy days", "context": "` + strings.Repeat("c", 101) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/mood/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if e := decodeBody[errorResponse](t, w); e.Error != "Validation Error" || e.Message == "" {
				t.Errorf("error body = %+v", e)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/mood/analyses/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodGet, "/mood/analyses/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/playlists/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodDelete, "/playlists/" + uuid.NewString() + "/songs/abc", http.StatusBadRequest},
		{http.MethodGet, "/catalog/regions?k=0", http.StatusBadRequest},
		{http.MethodGet, "/catalog/regions?k=two", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if w := ts.do(tt.method, tt.path, ""); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	genres := decodeBody[[]genreResponse](t, ts.do(http.MethodGet, "/genres", ""))
	wantGenres, _ := ts.store.Genres().List(ctx)
	if len(genres) != len(wantGenres) || genres[0].Name != wantGenres[0].Name {
		t.Errorf("got %d genres, want %d", len(genres), len(wantGenres))
	}

	songs := decodeBody[[]songResponse](t, ts.do(http.MethodGet, "/songs", ""))
	n, _ := ts.store.Songs().Count(ctx)
	if len(songs) != n {
		t.Errorf("got %d songs, want %d", len(songs), n)
	}
	if songs[0].Quadrant == "" {
		t.Errorf("song quadrant missing: %+v", songs[0])
	}
	for _, s := range songs {
		if want := s.TempoBPM != nil && *s.TempoBPM >= 120; s.FastTempo != want {
			t.Errorf("song %q fastTempo = %v with tempo %v", s.Title, s.FastTempo, s.TempoBPM)
		}
	}

	w := ts.do(http.MethodGet, "/catalog/regions?k=2&min=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("regions status = %d", w.Code)
	}
	regions := decodeBody[regionsResponse](t, w)
	total := regions.OutlierCount
	for _, r := range regions.Regions {
		total += r.SongCount
	}
	if regions.TotalSongs != n || total != n {
		t.Errorf("regions cover %d of %d songs", total, n)
	}
}

func TestPlaylistEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/playlists", `{"name": "Evening", "public": true}`, UserHeader, "dave")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	p := decodeBody[playlistResponse](t, w)
	if p.Name != "Evening" || !p.Public || p.SongCount != 0 {
		t.Errorf("created = %+v", p)
	}
	base := "/playlists/" + p.ID.String()

	steps := []struct {
		name      string
		method    string
		path      string
		body      string
		wantCode  int
		wantSongs []int64
	}{
		{"append", http.MethodPost, base + "/songs", `{"songId": 1}`, http.StatusOK, []int64{1}},
		{"append second", http.MethodPost, base + "/songs", `{"songId": 2}`, http.StatusOK, []int64{1, 2}},
		{"insert first", http.MethodPost, base + "/songs", `{"songId": 3, "position": 1}`, http.StatusOK, []int64{3, 1, 2}},
		{"duplicate", http.MethodPost, base + "/songs", `{"songId": 1}`, http.StatusConflict, nil},
		{"bad position", http.MethodPost, base + "/songs", `{"songId": 4, "position": 10}`, http.StatusBadRequest, nil},
		{"unknown song", http.MethodPost, base + "/songs", `{"songId": 9999}`, http.StatusNotFound, nil},
		{"remove", http.MethodDelete, base + "/songs/1", "", http.StatusOK, []int64{3, 2}},
		{"remove again", http.MethodDelete, base + "/songs/1", "", http.StatusNotFound, nil},
		{"get", http.MethodGet, base, "", http.StatusOK, []int64{3, 2}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			w := ts.do(step.method, step.path, step.body)
			if w.Code != step.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, step.wantCode, w.Body.String())
			}
			if step.wantSongs == nil {
				return
			}
			got := decodeBody[playlistResponse](t, w)
			if len(got.Songs) != len(step.wantSongs) {
				t.Fatalf("got %d songs, want %v", len(got.Songs), step.wantSongs)
			}
			for i, s := range got.Songs {
				if s.SongID != step.wantSongs[i] || s.Position != i+1 || s.Title == "" {
					t.Errorf("song %d = %+v, want id %d", i, s, step.wantSongs[i])
				}
			}
		})
	}
}

func TestListPlaylistsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"Morning", "Night"} {
		w := ts.do(http.MethodPost, "/playlists", fmt.Sprintf(`{"name": %q}`, name), UserHeader, "erin")
		if w.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
		}
	}
	ts.do(http.MethodPost, "/playlists", `{"name": "Someone Else"}`, UserHeader, "frank")

	tests := []struct {
		name      string
		user      string
		wantNames []string
	}{
		{"owner", "erin", []string{"Morning", "Night"}},
		{"other user", "frank", []string{"Someone Else"}},
		{"unknown user", "nobody", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/playlists", "", UserHeader, tt.user)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var names []string
			for _, p := range decodeBody[[]playlistResponse](t, w) {
				names = append(names, p.Name)
			}
			slices.Sort(names)
			if !slices.Equal(names, tt.wantNames) {
				t.Errorf("playlists = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestPlaylistFromAnalysisEndpoint(t *testing.T) {
	ts := newTestServer(t)

	created := decodeBody[analysisResponse](t, ts.do(http.MethodPost, "/mood/analyze",
		`{"moodDescription": "sunny and social", "maxRecommendations": 3}`))

	w := ts.do(http.MethodPost, "/playlists", fmt.Sprintf(`{"analysisId": %q}`, created.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	p := decodeBody[playlistResponse](t, w)
	if p.Name != "Mood: sunny and social" || p.AnalysisID == nil || *p.AnalysisID != created.ID {
		t.Errorf("playlist = %+v", p)
	}
	if len(p.Songs) != len(created.Recommendations) {
		t.Fatalf("got %d songs, want %d", len(p.Songs), len(created.Recommendations))
	}
	for i, s := range p.Songs {
		if s.SongID != created.Recommendations[i].SongID {
			t.Errorf("song %d = %d, want %d", i, s.SongID, created.Recommendations[i].SongID)
		}
	}
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	ts := newTestServer(t)
	ts.store.Close()

	w := ts.do(http.MethodGet, "/songs", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	e := decodeBody[errorResponse](t, w)
	if e.Error != "Processing Error" || e.Message != "An error occurred while processing your request" {
		t.Errorf("error body = %+v", e)
	}
}
