package recommend

import (
	"cmp"
	"slices"
	"strings"

	"github.com/justestif/go-moodbeats/internal/catalog"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/store"
)

// MaxGenres caps the recommended genre list.
const MaxGenres = 5

// ResolveGenres lists the analysis' suggested genres, spelled as in the
// catalog when they fuzzy-match one, followed by the catalog genres whose
// ranges contain the analysis vector, best score first. Names are unique,
// compared case-insensitively, and at most MaxGenres are returned.
func ResolveGenres(a *store.Analysis, catalogGenres []mood.Genre) []string {
	out := make([]string, 0, MaxGenres)
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] || len(out) >= MaxGenres {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(name))
	}

	for _, name := range a.RecommendedGenres {
		if g, ok := catalog.MatchGenre(name, catalogGenres); ok {
			add(g.Name)
		} else {
			add(name)
		}
	}

	v, ok := a.Vector()
	if !ok {
		return out
	}

	compatible := make([]mood.Genre, 0, len(catalogGenres))
	for _, g := range catalogGenres {
		if g.IsCompatible(v) {
			compatible = append(compatible, g)
		}
	}
	slices.SortStableFunc(compatible, func(x, y mood.Genre) int {
		return cmp.Compare(y.CompatibilityScore(v), x.CompatibilityScore(v))
	})
	for _, g := range compatible {
		add(g.Name)
	}
	return out
}
