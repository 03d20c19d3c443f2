package store

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/analysis"
	"github.com/justestif/go-moodbeats/internal/mood"
)

// DefaultUsername identifies callers that do not name themselves.
const DefaultUsername = "demo_user"

// User is a caller, identified by username only.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// Analysis is a persisted mood analysis.
type Analysis struct {
	ID                uuid.UUID
	UserID            int64
	Description       string
	Context           string
	Emotions          []string
	Energy            *int // nullable
	Arousal           *int // nullable
	Valence           *int // nullable
	RecommendedGenres []string
	Insight           string
	Raw               string
	Fallback          bool
	CreatedAt         time.Time
}

// NewAnalysis copies an analyzer result into a persistable Analysis.
func NewAnalysis(userID int64, description, moodContext string, r *analysis.Result) Analysis {
	return Analysis{
		ID:                uuid.New(),
		UserID:            userID,
		Description:       description,
		Context:           moodContext,
		Emotions:          r.Emotions,
		Energy:            r.Energy,
		Arousal:           r.Arousal,
		Valence:           r.Valence,
		RecommendedGenres: r.RecommendedGenres,
		Insight:           r.Insight,
		Raw:               r.Raw,
		Fallback:          r.Fallback,
	}
}

// Vector returns the mood vector when all levels are present.
func (a *Analysis) Vector() (mood.Vector, bool) {
	if a.Energy == nil || a.Arousal == nil || a.Valence == nil {
		return mood.Vector{}, false
	}
	return mood.NewVector(*a.Energy, *a.Arousal, *a.Valence), true
}

// Summary renders the levels, with "?" for missing ones.
func (a *Analysis) Summary() string {
	r := analysis.Result{Energy: a.Energy, Arousal: a.Arousal, Valence: a.Valence}
	return r.Summary()
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Recommendation is a persisted, rateable recommendation entry.
type Recommendation struct {
	ID         uuid.UUID
	AnalysisID uuid.UUID
	UserID     int64
	SongID     int64
	Score      float64
	Reason     string
	Rank       int  // 1-based position in the ranked list
	Rating     *int // nullable, 1..5
	Feedback   string
	CreatedAt  time.Time
}

// Rate records a user rating. Ratings outside 1..5 are rejected.
func (r *Recommendation) Rate(rating int, feedback string) error {
	if rating < MinRating || rating > MaxRating {
		return mood.InvalidArgument("rating", "must be between 1 and 5")
	}
	r.Rating = &rating
	r.Feedback = feedback
	return nil
}

// IsHighConfidence reports a score of at least 0.8.
func (r *Recommendation) IsHighConfidence() bool { return r.Score >= 0.8 }

// IsLowConfidence reports a score below 0.5.
func (r *Recommendation) IsLowConfidence() bool { return r.Score < 0.5 }

// AccuracyScore compares the rating, scaled to [0, 1], with the predicted
// score. Unrated recommendations score 0.
func (r *Recommendation) AccuracyScore() float64 {
	if r.Rating == nil {
		return 0
	}
	normalized := float64(*r.Rating-1) / 4
	return 1 - math.Abs(normalized-r.Score)
}

// RatingDescription labels the rating.
func (r *Recommendation) RatingDescription() string {
	if r.Rating == nil {
		return "Not rated"
	}
	switch *r.Rating {
	case 5:
		return "Loved it"
	case 4:
		return "Really liked it"
	case 3:
		return "It was okay"
	case 2:
		return "Didn't like it"
	case 1:
		return "Hated it"
	default:
		return "Invalid rating"
	}
}
