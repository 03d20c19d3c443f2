package catalog

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// MatchThreshold is the minimum Jaro-Winkler similarity for a genre match.
const MatchThreshold = 0.88

// normalizeGenre lowercases and drops everything but letters and digits,
// so "Hip Hop", "hip-hop" and "HipHop" compare equal. "&" becomes "and".
func normalizeGenre(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "&", "and")
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity returns the Jaro-Winkler similarity of two normalized genre names.
func Similarity(a, b string) float64 {
	na, nb := normalizeGenre(a), normalizeGenre(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4)
}

// MatchGenre returns the genre whose name is most similar to name, if the
// similarity reaches MatchThreshold. Earlier genres win ties.
func MatchGenre(name string, genres []mood.Genre) (mood.Genre, bool) {
	var (
		best      mood.Genre
		bestScore float64
	)
	for _, g := range genres {
		if score := Similarity(name, g.Name); score > bestScore {
			best, bestScore = g, score
		}
	}
	if bestScore < MatchThreshold {
		return mood.Genre{}, false
	}
	return best, true
}

// MatchAny returns the first name in names that matches a genre.
func MatchAny(names []string, genres []mood.Genre) (mood.Genre, bool) {
	for _, n := range names {
		if g, ok := MatchGenre(n, genres); ok {
			return g, true
		}
	}
	return mood.Genre{}, false
}
