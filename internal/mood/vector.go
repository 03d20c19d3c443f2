// Package mood implements the mood-to-music matching engine: mood vectors,
// genre and song compatibility scoring, and recommendation ranking.
package mood

import "fmt"

// Level bounds shared by every mood axis.
const (
	MinLevel     = 1
	MaxLevel     = 10
	NeutralLevel = 5
)

// Vector is a point in emotion space. The zero value is not a valid vector;
// build one with NewVector or ParseVector.
type Vector struct {
	energy  int
	arousal int
	valence int
}

// NewVector builds a Vector, clamping each level into [MinLevel, MaxLevel].
// Used for analyzer output, which is not guaranteed to respect the bounds.
func NewVector(energy, arousal, valence int) Vector {
	return Vector{
		energy:  ClampLevel(energy),
		arousal: ClampLevel(arousal),
		valence: ClampLevel(valence),
	}
}

// ParseVector builds a Vector, rejecting any level outside [MinLevel, MaxLevel]
// with an *OutOfRangeError.
func ParseVector(energy, arousal, valence int) (Vector, error) {
	if err := checkLevel("energy", energy, MinLevel, MaxLevel); err != nil {
		return Vector{}, err
	}
	if err := checkLevel("arousal", arousal, MinLevel, MaxLevel); err != nil {
		return Vector{}, err
	}
	if err := checkLevel("valence", valence, MinLevel, MaxLevel); err != nil {
		return Vector{}, err
	}
	return Vector{energy: energy, arousal: arousal, valence: valence}, nil
}

// Neutral returns the 5/5/5 vector used when analysis fails.
func Neutral() Vector {
	return Vector{energy: NeutralLevel, arousal: NeutralLevel, valence: NeutralLevel}
}

// ClampLevel forces v into [MinLevel, MaxLevel].
func ClampLevel(v int) int {
	return max(MinLevel, min(MaxLevel, v))
}

func (v Vector) Energy() int  { return v.energy }
func (v Vector) Arousal() int { return v.arousal }
func (v Vector) Valence() int { return v.valence }

// Valid reports whether all three levels are within bounds.
// Only the zero value (or a hand-built struct) can fail this.
func (v Vector) Valid() bool {
	return checkLevel("energy", v.energy, MinLevel, MaxLevel) == nil &&
		checkLevel("arousal", v.arousal, MinLevel, MaxLevel) == nil &&
		checkLevel("valence", v.valence, MinLevel, MaxLevel) == nil
}

// IsHighEnergy reports energy >= 7.
func (v Vector) IsHighEnergy() bool { return v.energy >= 7 }

// IsPositive reports valence >= 6.
func (v Vector) IsPositive() bool { return v.valence >= 6 }

// IsCalm reports arousal <= 4.
func (v Vector) IsCalm() bool { return v.arousal <= 4 }

// Summary renders the vector the way responses display it.
func (v Vector) Summary() string {
	return fmt.Sprintf("Energy: %d, Arousal: %d, Valence: %d", v.energy, v.arousal, v.valence)
}

func (v Vector) String() string {
	return fmt.Sprintf("{energy:%d arousal:%d valence:%d}", v.energy, v.arousal, v.valence)
}
