// Package clustering groups catalog songs into mood regions with k-means.
// Regions describe the catalog; they never influence ranking.
package clustering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// RegionConfig holds clustering parameters.
type RegionConfig struct {
	K             int // Number of clusters (default: 4, one per quadrant)
	MinRegionSize int // Smaller clusters become outliers
}

// DefaultRegionConfig returns the recommended default configuration.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		K:             4,
		MinRegionSize: 2,
	}
}

// Centroid is the mean position of a region, in levels.
type Centroid struct {
	Energy  float64 `json:"energy"`
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

// Region is a cluster of songs with similar moods.
type Region struct {
	Name        string
	Description string
	Centroid    Centroid
	Songs       []mood.Song
}

type songObservation struct {
	song   *mood.Song
	coords clusters.Coordinates
}

func (o songObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o songObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// normalize maps a 1-10 level onto [0, 1].
func normalize(level int) float64 {
	return float64(level-mood.MinLevel) / float64(mood.MaxLevel-mood.MinLevel)
}

// DetectMoodRegions partitions songs by (energy, valence, arousal).
// Returns regions, largest first, and the songs in clusters smaller than
// MinRegionSize. With fewer songs than clusters every song is an outlier.
func DetectMoodRegions(songs []mood.Song, cfg RegionConfig) ([]Region, []mood.Song, error) {
	if len(songs) == 0 {
		return nil, nil, nil
	}
	if cfg.K <= 0 {
		cfg.K = DefaultRegionConfig().K
	}
	if cfg.MinRegionSize < 1 {
		cfg.MinRegionSize = 1
	}
	if len(songs) < cfg.K {
		return nil, slices.Clone(songs), nil
	}

	obs := make(clusters.Observations, len(songs))
	for i := range songs {
		s := &songs[i]
		obs[i] = songObservation{
			song: s,
			coords: clusters.Coordinates{
				normalize(s.Mood.Energy()),
				normalize(s.Mood.Valence()),
				normalize(s.Mood.Arousal()),
			},
		}
	}

	result, err := kmeans.New().Partition(obs, cfg.K)
	if err != nil {
		return nil, nil, fmt.Errorf("partitioning songs: %w", err)
	}

	var (
		regions  []Region
		outliers []mood.Song
	)
	for _, c := range result {
		members := make([]mood.Song, 0, len(c.Observations))
		for _, o := range c.Observations {
			if so, ok := o.(songObservation); ok {
				members = append(members, *so.song)
			}
		}
		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinRegionSize {
			outliers = append(outliers, members...)
			continue
		}
		regions = append(regions, newRegion(members))
	}

	slices.SortFunc(regions, func(a, b Region) int {
		if n := cmp.Compare(len(b.Songs), len(a.Songs)); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	slices.SortFunc(outliers, func(a, b mood.Song) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return regions, outliers, nil
}

func newRegion(songs []mood.Song) Region {
	var c Centroid
	for _, s := range songs {
		c.Energy += float64(s.Mood.Energy())
		c.Valence += float64(s.Mood.Valence())
		c.Arousal += float64(s.Mood.Arousal())
	}
	n := float64(len(songs))
	c.Energy /= n
	c.Valence /= n
	c.Arousal /= n

	slices.SortStableFunc(songs, func(a, b mood.Song) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return Region{
		Name:        regionName(c),
		Description: mood.QuadrantDescription(c.Energy, c.Valence),
		Centroid:    c,
		Songs:       songs,
	}
}

// regionName names the centroid's quadrant, marking calm regions.
func regionName(c Centroid) string {
	name := mood.QuadrantName(c.Energy, c.Valence)
	if c.Arousal <= 4 {
		return name + " (Calm)"
	}
	return name
}
