package mood

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultLimit is the number of recommendations callers ask for when unspecified.
const DefaultLimit = 10

// closeAxisScore is the per-axis score at or above which an axis counts as a
// close match in the reason text (a distance of at most one level).
const closeAxisScore = 0.9

// Recommendation is a ranked song with its score and a descriptive reason.
type Recommendation struct {
	Song   Song
	Score  float64
	Reason string
}

// Strength labels the score for display.
func (r Recommendation) Strength() string {
	return ScoreStrength(r.Score)
}

// ScoreStrength maps a match score to a human label.
func ScoreStrength(score float64) string {
	switch {
	case score >= 0.9:
		return "Excellent Match"
	case score >= 0.8:
		return "Great Match"
	case score >= 0.7:
		return "Good Match"
	case score >= 0.6:
		return "Fair Match"
	case score >= 0.5:
		return "Weak Match"
	default:
		return "Poor Match"
	}
}

// Rank scores every candidate against m and returns the compatible ones,
// best first, at most limit of them.
//
// Songs scoring below CompatibilityThreshold are dropped even when fewer than
// limit remain. Explicit songs are dropped unless includeExplicit is set. Equal
// scores keep their input order. Returns an *InvalidArgumentError if limit <= 0.
func Rank(m Vector, candidates []Song, limit int, includeExplicit bool) ([]Recommendation, error) {
	if limit <= 0 {
		return nil, InvalidArgument("limit", "must be at least 1")
	}

	type candidate struct {
		song     Song
		distance int
	}
	kept := make([]candidate, 0, len(candidates))
	for _, s := range candidates {
		if s.Explicit && !includeExplicit {
			continue
		}
		d := s.weightedDistance(m)
		if d > maxCompatibleDistance {
			continue
		}
		kept = append(kept, candidate{song: s, distance: d})
	}

	// Integer keys so equal scores tie exactly and the stable sort keeps input order.
	slices.SortStableFunc(kept, func(a, b candidate) int {
		return cmp.Compare(a.distance, b.distance)
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}
	ranked := make([]Recommendation, 0, len(kept))
	for _, c := range kept {
		ranked = append(ranked, Recommendation{
			Song:   c.song,
			Score:  distanceScore(c.distance),
			Reason: matchReason(c.song, m),
		})
	}
	return ranked, nil
}

type axisContribution struct {
	label    string
	score    float64
	weighted float64
}

// matchReason names the axes the song matches closely, or failing that the
// axis contributing most to the weighted score.
func matchReason(s Song, m Vector) string {
	e, v, a := s.axisScores(m)
	axes := []axisContribution{
		{label: "energy", score: e, weighted: EnergyWeight * e},
		{label: "mood positivity", score: v, weighted: ValenceWeight * v},
		{label: "intensity", score: a, weighted: ArousalWeight * a},
	}

	var matched []string
	for _, ax := range axes {
		if ax.score >= closeAxisScore {
			matched = append(matched, ax.label)
		}
	}

	switch len(matched) {
	case 0:
		best := axes[0]
		for _, ax := range axes[1:] {
			if ax.weighted > best.weighted {
				best = ax
			}
		}
		return "Best aligned with your " + best.label
	case 1, 2:
		return "Closely matches your " + strings.Join(matched, " and ")
	default:
		return "Closely matches your " + matched[0] + ", " + matched[1] + " and " + matched[2]
	}
}
