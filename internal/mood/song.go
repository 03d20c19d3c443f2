package mood

import (
	"fmt"
	"math"
	"strings"
)

// Match score weights. Energy and valence dominate perceived mood; arousal is secondary.
const (
	EnergyWeight  = 0.4
	ValenceWeight = 0.4
	ArousalWeight = 0.2

	// CompatibilityThreshold is the minimum MatchScore for a compatible song.
	CompatibilityThreshold = 0.6

	// maxCompatibleDistance is CompatibilityThreshold on the weightedDistance scale.
	maxCompatibleDistance = 40
)

// Tempo and duration bounds for catalog songs.
const (
	MinTempoBPM   = 60
	MaxTempoBPM   = 200
	MinDurationMs = 1000
)

// Song is a catalog entry with its own point in mood space.
type Song struct {
	ID         int64
	Title      string
	Artist     string
	GenreID    *int64 // nullable
	GenreName  string // empty when GenreID is nil
	Mood       Vector
	TempoBPM   *int   // nullable
	DurationMs *int64 // nullable
	SpotifyID  string
	PreviewURL string
	Explicit   bool
}

// Validate checks title, artist, mood levels, tempo and duration bounds.
func (s Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return InvalidArgument("song title", "must not be empty")
	}
	if strings.TrimSpace(s.Artist) == "" {
		return InvalidArgument("song artist", "must not be empty")
	}
	if _, err := ParseVector(s.Mood.energy, s.Mood.arousal, s.Mood.valence); err != nil {
		return fmt.Errorf("song %q: %w", s.Title, err)
	}
	if s.TempoBPM != nil {
		if err := checkLevel("tempo", *s.TempoBPM, MinTempoBPM, MaxTempoBPM); err != nil {
			return fmt.Errorf("song %q: %w", s.Title, err)
		}
	}
	if s.DurationMs != nil && *s.DurationMs < MinDurationMs {
		return fmt.Errorf("song %q: %w", s.Title, &OutOfRangeError{
			Field: "duration_ms",
			Value: int(*s.DurationMs),
			Min:   MinDurationMs,
			Max:   math.MaxInt32,
		})
	}
	return nil
}

// MatchScore is the weighted closeness of the song's vector to m, clamped to [0, 1].
// Songs at the same weighted distance from m get bit-identical scores.
func (s Song) MatchScore(m Vector) float64 {
	return distanceScore(s.weightedDistance(m))
}

// IsCompatible reports MatchScore(m) >= CompatibilityThreshold.
func (s Song) IsCompatible(m Vector) bool {
	return s.weightedDistance(m) <= maxCompatibleDistance
}

// weightedDistance is 4|dE| + 4|dV| + 2|dA|, the match weights scaled to
// integers. MatchScore is 1 - weightedDistance/100.
func (s Song) weightedDistance(m Vector) int {
	return 4*absInt(s.Mood.energy-m.energy) +
		4*absInt(s.Mood.valence-m.valence) +
		2*absInt(s.Mood.arousal-m.arousal)
}

func distanceScore(d int) float64 {
	return clamp01(1 - float64(d)/100)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (s Song) axisScores(m Vector) (energy, valence, arousal float64) {
	energy = axisScore(float64(s.Mood.energy), float64(m.energy))
	valence = axisScore(float64(s.Mood.valence), float64(m.valence))
	arousal = axisScore(float64(s.Mood.arousal), float64(m.arousal))
	return energy, valence, arousal
}

// DisplayName renders "Title - Artist".
func (s Song) DisplayName() string {
	return fmt.Sprintf("%s - %s", s.Title, s.Artist)
}

// FormattedDuration renders the duration as m:ss, or "Unknown".
func (s Song) FormattedDuration() string {
	if s.DurationMs == nil {
		return "Unknown"
	}
	seconds := *s.DurationMs / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// IsFastTempo reports a tempo of at least 120 BPM.
func (s Song) IsFastTempo() bool {
	return s.TempoBPM != nil && *s.TempoBPM >= 120
}
