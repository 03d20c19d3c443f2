package mood

// Quadrant names a mood by splitting energy and valence into high and low halves.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat & Bright"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Energy above 6 and valence above 5 count as high. A calm arousal (<= 4)
// appends "(Calm)".
func (v Vector) Quadrant() string {
	name := quadrantName(float64(v.energy), float64(v.valence))
	if v.IsCalm() {
		return name + " (Calm)"
	}
	return name
}

// QuadrantDescription returns a one-line description of the vector's quadrant.
func (v Vector) QuadrantDescription() string {
	return quadrantDescription(float64(v.energy), float64(v.valence))
}

// QuadrantName names a point given as fractional energy and valence levels.
// Used for cluster centroids, which are not whole levels.
func QuadrantName(energy, valence float64) string {
	return quadrantName(energy, valence)
}

// QuadrantDescription describes a point given as fractional energy and valence levels.
func QuadrantDescription(energy, valence float64) string {
	return quadrantDescription(energy, valence)
}

func quadrantName(energy, valence float64) string {
	highEnergy := energy > 6
	highValence := valence > 5

	switch {
	case highEnergy && highValence:
		return "Upbeat & Bright"
	case highEnergy && !highValence:
		return "Intense & Dark"
	case !highEnergy && highValence:
		return "Chill & Happy"
	default:
		return "Reflective & Melancholy"
	}
}

func quadrantDescription(energy, valence float64) string {
	switch {
	case energy > 6 && valence > 5:
		return "High-energy, positive vibes - perfect for dancing and celebrations"
	case energy > 6:
		return "Intense, driving energy with darker emotional tones"
	case valence > 5:
		return "Relaxed and uplifting - great for unwinding"
	default:
		return "Contemplative and introspective - ideal for quiet moments"
	}
}
