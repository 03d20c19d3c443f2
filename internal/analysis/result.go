package analysis

import (
	"fmt"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// FallbackInsight is the insight attached to the neutral default result.
const FallbackInsight = "Unable to analyze mood - using default values"

// Result is the normalized outcome of one mood analysis.
//
// Levels are nil when the model omitted them or returned something that is
// not a number. Present levels are always within [mood.MinLevel, mood.MaxLevel].
type Result struct {
	Emotions          []string `json:"primary_emotions"`
	Energy            *int     `json:"energy_level"`
	Arousal           *int     `json:"arousal_level"`
	Valence           *int     `json:"valence"`
	TempoRange        string   `json:"tempo_range"`
	RecommendedGenres []string `json:"recommended_genres"`
	Instrumentation   string   `json:"instrumentation"`
	MoodTags          []string `json:"mood_tags"`
	Insight           string   `json:"insight"`
	Raw               string   `json:"raw,omitempty"`
	Fallback          bool     `json:"fallback"`
}

// Fallback returns the neutral default used whenever analysis fails.
func Fallback() *Result {
	return &Result{
		Emotions:          []string{"neutral"},
		Energy:            intPtr(mood.NeutralLevel),
		Arousal:           intPtr(mood.NeutralLevel),
		Valence:           intPtr(mood.NeutralLevel),
		TempoRange:        "medium",
		RecommendedGenres: []string{"pop"},
		Instrumentation:   "balanced",
		MoodTags:          []string{"neutral"},
		Insight:           FallbackInsight,
		Fallback:          true,
	}
}

// Vector returns the mood vector when all three levels are present.
func (r *Result) Vector() (mood.Vector, bool) {
	if r.Energy == nil || r.Arousal == nil || r.Valence == nil {
		return mood.Vector{}, false
	}
	return mood.NewVector(*r.Energy, *r.Arousal, *r.Valence), true
}

// Summary renders "Energy: E, Arousal: A, Valence: V" with "?" for missing levels.
func (r *Result) Summary() string {
	return fmt.Sprintf("Energy: %s, Arousal: %s, Valence: %s",
		levelText(r.Energy), levelText(r.Arousal), levelText(r.Valence))
}

func levelText(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprint(*v)
}

func intPtr(v int) *int {
	return &v
}
