package clustering

import (
	"fmt"
	"strings"
)

const sampleSongCount = 3

// FormatRegionSummary returns a human-readable summary of detected regions.
// Shows the centroid, song count and first 3 songs of each region.
// Outliers are summarized by count only.
func FormatRegionSummary(regions []Region, outliers int) string {
	var sb strings.Builder

	total := outliers
	for _, r := range regions {
		total += len(r.Songs)
	}

	if len(regions) == 0 {
		fmt.Fprintf(&sb, "No mood regions found from %d songs", total)
	} else {
		fmt.Fprintf(&sb, "Found %d mood %s from %d songs",
			len(regions), plural(len(regions), "region", "regions"), total)
	}
	if outliers > 0 {
		fmt.Fprintf(&sb, " (%d outliers skipped)", outliers)
	}
	sb.WriteString("\n")

	for i, r := range regions {
		sb.WriteString("\n")
		sb.WriteString(formatRegion(i+1, r))
	}

	return sb.String()
}

func formatRegion(num int, r Region) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Region %d: %s (%d %s)\n",
		num, r.Name, len(r.Songs), plural(len(r.Songs), "song", "songs"))
	fmt.Fprintf(&sb, "  Energy %.1f, Valence %.1f, Arousal %.1f\n",
		r.Centroid.Energy, r.Centroid.Valence, r.Centroid.Arousal)

	n := min(sampleSongCount, len(r.Songs))
	for _, s := range r.Songs[:n] {
		fmt.Fprintf(&sb, "  • %q - %s\n", s.Title, s.Artist)
	}
	if remaining := len(r.Songs) - sampleSongCount; remaining > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", remaining)
	}

	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
