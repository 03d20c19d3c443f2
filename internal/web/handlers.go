package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/clustering"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/recommend"
	"github.com/justestif/go-moodbeats/internal/store"
)

// UserHeader names the caller. Requests without it act as store.DefaultUsername.
const UserHeader = "X-User"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var exampleMoods = []string{
	"I'm feeling nostalgic about my college days but also excited about my future",
	"Stressed about work but trying to stay positive",
	"It's raining outside and I feel contemplative and cozy",
	"Just had an amazing workout and I'm energized",
	"Feeling lonely but hopeful that things will get better",
}

var features = []string{
	"AI-powered emotional analysis",
	"Personalized music recommendations",
	"Natural language mood descriptions",
	"Genre discovery based on feelings",
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	svc     *recommend.Service
	logger  *zap.Logger
	version string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *recommend.Service, logger *zap.Logger, version string) *Handlers {
	if version == "" {
		version = "1.0.0"
	}
	return &Handlers{
		svc:     svc,
		logger:  logger,
		version: version,
	}
}

// Health reports liveness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"service": "MoodBeats API",
		"version": h.version,
	})
}

// Demo describes the API with example moods (GET /mood/demo).
func (h *Handlers) Demo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Welcome to MoodBeats!",
		"description":   "Translate your feelings into the perfect soundtrack",
		"example_moods": exampleMoods,
		"features":      features,
	})
}

// AnalyzeMood analyzes a mood description and recommends songs (POST /mood/analyze).
func (h *Handlers) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}

	limit := 0
	if req.MaxRecommendations != nil {
		limit = *req.MaxRecommendations
		if limit < 1 {
			h.writeError(w, r, mood.InvalidArgument("max recommendations", fmt.Sprintf("must be between 1 and %d", recommend.MaxLimit)))
			return
		}
	}

	resp, err := h.svc.Recommend(r.Context(), recommend.Request{
		Username:        username(r),
		Description:     req.MoodDescription,
		Context:         req.Context,
		IncludeExplicit: req.IncludeExplicitContent,
		Limit:           limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(resp))
}

// GetAnalysis returns a stored analysis (GET /mood/analyses/{id}).
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetAnalysis(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(resp))
}

// RateRecommendation stores a rating (POST /recommendations/{id}/rating).
func (h *Handlers) RateRecommendation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ratingRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.svc.RateRecommendation(r.Context(), id, req.Rating, req.Feedback)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRatingResponse(rec))
}

// ListGenres returns the genre catalog (GET /genres).
func (h *Handlers) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.ListGenres(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]genreResponse, len(genres))
	for i, g := range genres {
		out[i] = newGenreResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListSongs returns the song catalog (GET /songs).
func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.ListSongs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponses(songs))
}

// MoodRegions clusters the catalog (GET /catalog/regions?k=&min=).
func (h *Handlers) MoodRegions(w http.ResponseWriter, r *http.Request) {
	cfg := clustering.DefaultRegionConfig()
	var ok bool
	if cfg.K, ok = h.intQuery(w, r, "k", cfg.K, 1, 20); !ok {
		return
	}
	if cfg.MinRegionSize, ok = h.intQuery(w, r, "min", cfg.MinRegionSize, 1, 1000); !ok {
		return
	}

	res, err := h.svc.MoodRegions(r.Context(), cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRegionsResponse(res))
}

// CreatePlaylist creates a playlist, optionally from an analysis (POST /playlists).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.svc.CreatePlaylist(r.Context(), recommend.PlaylistRequest{
		Username:    username(r),
		Name:        req.Name,
		Description: req.Description,
		Public:      req.Public,
		AnalysisID:  req.AnalysisID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPlaylistResponse(view))
}

// ListPlaylists returns the caller's playlists (GET /playlists).
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListPlaylists(r.Context(), username(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]playlistResponse, len(views))
	for i, v := range views {
		out[i] = newPlaylistResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlaylist returns a playlist with its songs (GET /playlists/{id}).
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetPlaylist(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(view))
}

// AddSong adds a song to a playlist (POST /playlists/{id}/songs).
func (h *Handlers) AddSong(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req addSongRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.svc.AddSongToPlaylist(r.Context(), id, req.SongID, req.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(view))
}

// RemoveSong removes a song from a playlist (DELETE /playlists/{id}/songs/{songID}).
func (h *Handlers) RemoveSong(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r, "id")
	if !ok {
		return
	}
	songID, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		h.writeError(w, r, mood.InvalidArgument("song id", "must be an integer"))
		return
	}
	view, err := h.svc.RemoveSongFromPlaylist(r.Context(), id, songID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(view))
}

func username(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	return store.DefaultUsername
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, mood.InvalidArgument("request body", err.Error()))
		return false
	}
	return true
}

func (h *Handlers) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		h.writeError(w, r, mood.InvalidArgument(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) intQuery(w http.ResponseWriter, r *http.Request, name string, fallback, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		h.writeError(w, r, mood.InvalidArgument(name, fmt.Sprintf("must be an integer between %d and %d", lo, hi)))
		return 0, false
	}
	return n, true
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and answered with a generic message.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, mood.ErrInvalidArgument),
		errors.Is(err, mood.ErrOutOfRange),
		errors.Is(err, playlist.ErrInvalidPosition):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation Error", Message: err.Error()})
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, playlist.ErrSongNotInPlaylist):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found", Message: err.Error()})
	case errors.Is(err, playlist.ErrDuplicateSong):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Conflict", Message: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Processing Error",
			Message: "An error occurred while processing your request",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
