// Package recommend runs the end-to-end flow from a mood description to a
// persisted, ranked list of songs, and manages ratings and playlists built
// from those lists.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/clustering"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/store"
)

// MaxLimit caps the number of recommendations per request.
const MaxLimit = 50

// Analyzer abstracts the mood analyzer for testing.
type Analyzer interface {
	Analyze(ctx context.Context, text, moodContext string) (*analysis.Result, error)
}

// Service handles recommendation, rating and playlist operations.
type Service struct {
	store    store.Store
	analyzer Analyzer
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a new recommendation service.
func New(s store.Store, a Analyzer, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		analyzer: a,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Request is one mood analysis request.
type Request struct {
	Username        string
	Description     string
	Context         string
	IncludeExplicit bool
	Limit           int // 0 means mood.DefaultLimit
}

// Item is one persisted recommendation joined with its song.
type Item struct {
	ID     uuid.UUID
	Rank   int
	Song   mood.Song
	Score  float64
	Reason string
}

// Strength labels the score for display.
func (i Item) Strength() string {
	return mood.ScoreStrength(i.Score)
}

// Response is a persisted analysis with its genres and ranked songs.
type Response struct {
	Analysis        store.Analysis
	Genres          []string
	Recommendations []Item
}

// Summary renders the analysis levels.
func (r *Response) Summary() string {
	return r.Analysis.Summary()
}

// Recommend analyzes the description, ranks the catalog against the result
// and persists both. An analysis with a missing level yields no songs.
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	limit := req.Limit
	switch {
	case limit == 0:
		limit = mood.DefaultLimit
	case limit < 0 || limit > MaxLimit:
		return nil, mood.InvalidArgument("max recommendations", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}
	if err := analysis.ValidateInput(strings.TrimSpace(req.Description), strings.TrimSpace(req.Context)); err != nil {
		return nil, err
	}

	user, err := s.store.Users().Ensure(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, req.Description, req.Context)
	if err != nil {
		return nil, err
	}

	songs, err := s.store.Songs().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading songs: %w", err)
	}
	genres, err := s.store.Genres().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading genres: %w", err)
	}

	a := store.NewAnalysis(user.ID,
		strings.TrimSpace(req.Description),
		strings.TrimSpace(req.Context),
		res,
	)

	var ranked []mood.Recommendation
	if v, ok := res.Vector(); ok {
		ranked, err = mood.Rank(v, songs, limit, req.IncludeExplicit)
		if err != nil {
			return nil, err
		}
	} else {
		s.logger.Info("incomplete analysis, skipping song ranking", zap.String("summary", res.Summary()))
	}

	recs := make([]store.Recommendation, len(ranked))
	items := make([]Item, len(ranked))
	for i, r := range ranked {
		recs[i] = store.Recommendation{
			ID:     uuid.New(),
			UserID: user.ID,
			SongID: r.Song.ID,
			Score:  r.Score,
			Reason: r.Reason,
			Rank:   i + 1,
		}
		items[i] = Item{
			ID:     recs[i].ID,
			Rank:   i + 1,
			Song:   r.Song,
			Score:  r.Score,
			Reason: r.Reason,
		}
	}

	if err := s.store.Analyses().Create(ctx, &a, recs); err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}

	s.logger.Info("recommendations created",
		zap.String("analysis_id", a.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("fallback", a.Fallback),
		zap.Int("songs", len(items)),
	)

	return &Response{
		Analysis:        a,
		Genres:          ResolveGenres(&a, genres),
		Recommendations: items,
	}, nil
}

// GetAnalysis loads a persisted analysis with its recommendations.
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*Response, error) {
	a, err := s.store.Analyses().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	recs, err := s.store.Analyses().Recommendations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting recommendations: %w", err)
	}

	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.SongID
	}
	songs, err := s.store.Songs().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading songs: %w", err)
	}
	byID := make(map[int64]mood.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	items := make([]Item, 0, len(recs))
	for _, r := range recs {
		song, ok := byID[r.SongID]
		if !ok {
			continue
		}
		items = append(items, Item{
			ID:     r.ID,
			Rank:   r.Rank,
			Song:   song,
			Score:  r.Score,
			Reason: r.Reason,
		})
	}

	genres, err := s.store.Genres().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading genres: %w", err)
	}

	return &Response{
		Analysis:        *a,
		Genres:          ResolveGenres(a, genres),
		Recommendations: items,
	}, nil
}

// RateRecommendation records a 1-5 rating with optional feedback.
func (s *Service) RateRecommendation(ctx context.Context, id uuid.UUID, rating int, feedback string) (*store.Recommendation, error) {
	rec, err := s.store.Analyses().GetRecommendation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting recommendation: %w", err)
	}
	if err := rec.Rate(rating, strings.TrimSpace(feedback)); err != nil {
		return nil, err
	}
	if err := s.store.Analyses().SaveRating(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGenres returns the genre catalog ordered by name.
func (s *Service) ListGenres(ctx context.Context) ([]mood.Genre, error) {
	genres, err := s.store.Genres().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}
	return genres, nil
}

// ListSongs returns the song catalog ordered by ID.
func (s *Service) ListSongs(ctx context.Context) ([]mood.Song, error) {
	songs, err := s.store.Songs().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	return songs, nil
}

// RegionsResult contains the outcome of mood region detection.
type RegionsResult struct {
	Regions      []clustering.Region
	OutlierCount int // Songs in clusters below the minimum size
	TotalSongs   int
}

// MoodRegions clusters the song catalog in mood space.
func (s *Service) MoodRegions(ctx context.Context, cfg clustering.RegionConfig) (*RegionsResult, error) {
	songs, err := s.store.Songs().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	regions, outliers, err := clustering.DetectMoodRegions(songs, cfg)
	if err != nil {
		return nil, err
	}
	return &RegionsResult{
		Regions:      regions,
		OutlierCount: len(outliers),
		TotalSongs:   len(songs),
	}, nil
}
