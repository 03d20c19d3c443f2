package mood

import (
	"math"
	"strings"
)

// Range is a closed interval of levels. Build one with NewRange.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NewRange validates that MinLevel <= lo <= hi <= MaxLevel.
func NewRange(lo, hi int) (Range, error) {
	r := Range{Min: lo, Max: hi}
	if err := r.validate("range"); err != nil {
		return Range{}, err
	}
	return r, nil
}

// FullRange spans every level.
func FullRange() Range {
	return Range{Min: MinLevel, Max: MaxLevel}
}

// Midpoint returns (Min+Max)/2.
func (r Range) Midpoint() float64 {
	return float64(r.Min+r.Max) / 2
}

// Contains reports Min <= v <= Max.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) validate(field string) error {
	if err := checkLevel(field+".min", r.Min, MinLevel, MaxLevel); err != nil {
		return err
	}
	if err := checkLevel(field+".max", r.Max, r.Min, MaxLevel); err != nil {
		return err
	}
	return nil
}

// Genre is an acceptable region of mood space.
type Genre struct {
	ID              int64
	Name            string
	Characteristics string
	Energy          Range
	Valence         Range
	Arousal         Range
}

// NewGenre validates the name and all three ranges.
func NewGenre(name string, energy, valence, arousal Range) (Genre, error) {
	g := Genre{
		Name:    strings.TrimSpace(name),
		Energy:  energy,
		Valence: valence,
		Arousal: arousal,
	}
	if err := g.Validate(); err != nil {
		return Genre{}, err
	}
	return g, nil
}

// Validate checks the invariants NewGenre enforces.
// Used by stores and the seed loader on externally supplied genres.
func (g Genre) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return InvalidArgument("genre name", "must not be empty")
	}
	if err := g.Energy.validate("energy"); err != nil {
		return err
	}
	if err := g.Valence.validate("valence"); err != nil {
		return err
	}
	return g.Arousal.validate("arousal")
}

// CompatibilityScore averages, over the three axes, 1 - |midpoint - level| / 10.
// The result is clamped to [0, 1].
func (g Genre) CompatibilityScore(m Vector) float64 {
	energy := axisScore(g.Energy.Midpoint(), float64(m.energy))
	valence := axisScore(g.Valence.Midpoint(), float64(m.valence))
	arousal := axisScore(g.Arousal.Midpoint(), float64(m.arousal))
	return clamp01((energy + valence + arousal) / 3)
}

// IsCompatible reports whether every level of m lies inside the genre's ranges.
// This is containment, not a threshold on CompatibilityScore.
func (g Genre) IsCompatible(m Vector) bool {
	return g.Energy.Contains(m.energy) &&
		g.Valence.Contains(m.valence) &&
		g.Arousal.Contains(m.arousal)
}

func axisScore(a, b float64) float64 {
	return 1 - math.Abs(a-b)/10
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
