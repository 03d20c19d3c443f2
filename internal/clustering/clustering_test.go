package clustering

import (
	"math"
	"strings"
	"testing"

	"github.com/justestif/go-moodbeats/internal/mood"
)

func song(id int64, title string, energy, arousal, valence int) mood.Song {
	return mood.Song{
		ID:     id,
		Title:  title,
		Artist: "Artist",
		Mood:   mood.NewVector(energy, arousal, valence),
	}
}

func sampleSongs() []mood.Song {
	return []mood.Song{
		song(1, "party 1", 9, 9, 9),
		song(2, "party 2", 9, 8, 10),
		song(3, "party 3", 10, 9, 9),
		song(4, "dark 1", 9, 9, 2),
		song(5, "dark 2", 10, 10, 1),
		song(6, "dark 3", 9, 10, 2),
		song(7, "chill 1", 2, 2, 8),
		song(8, "chill 2", 3, 2, 9),
		song(9, "sad 1", 2, 2, 2),
		song(10, "sad 2", 1, 1, 2),
	}
}

func TestDetectMoodRegionsPartition(t *testing.T) {
	songs := sampleSongs()
	cfg := DefaultRegionConfig()

	regions, outliers, err := DetectMoodRegions(songs, cfg)
	if err != nil {
		t.Fatalf("DetectMoodRegions() error: %v", err)
	}

	seen := make(map[int64]int)
	for i, r := range regions {
		if len(r.Songs) < cfg.MinRegionSize {
			t.Errorf("region %q has %d songs, below minimum %d", r.Name, len(r.Songs), cfg.MinRegionSize)
		}
		if i > 0 && len(r.Songs) > len(regions[i-1].Songs) {
			t.Errorf("regions not sorted by size: %d after %d", len(r.Songs), len(regions[i-1].Songs))
		}
		for _, s := range r.Songs {
			seen[s.ID]++
		}
	}
	for _, s := range outliers {
		seen[s.ID]++
	}
	for _, s := range songs {
		if seen[s.ID] != 1 {
			t.Errorf("song %d assigned %d times, want 1", s.ID, seen[s.ID])
		}
	}
}

func TestDetectMoodRegionsSingleCluster(t *testing.T) {
	songs := []mood.Song{
		song(1, "a", 8, 6, 9),
		song(2, "b", 10, 8, 7),
	}

	regions, outliers, err := DetectMoodRegions(songs, RegionConfig{K: 1, MinRegionSize: 1})
	if err != nil {
		t.Fatalf("DetectMoodRegions() error: %v", err)
	}
	if len(regions) != 1 || len(outliers) != 0 {
		t.Fatalf("got %d regions, %d outliers; want 1, 0", len(regions), len(outliers))
	}

	r := regions[0]
	want := Centroid{Energy: 9, Valence: 8, Arousal: 7}
	if math.Abs(r.Centroid.Energy-want.Energy) > 1e-9 ||
		math.Abs(r.Centroid.Valence-want.Valence) > 1e-9 ||
		math.Abs(r.Centroid.Arousal-want.Arousal) > 1e-9 {
		t.Errorf("Centroid = %+v, want %+v", r.Centroid, want)
	}
	if r.Name != "Upbeat & Bright" {
		t.Errorf("Name = %q, want Upbeat & Bright", r.Name)
	}
	if r.Songs[0].ID != 1 {
		t.Errorf("songs not ordered by ID: %+v", r.Songs)
	}
}

func TestDetectMoodRegionsOutliers(t *testing.T) {
	t.Run("fewer songs than clusters", func(t *testing.T) {
		songs := sampleSongs()[:3]
		regions, outliers, err := DetectMoodRegions(songs, RegionConfig{K: 4, MinRegionSize: 1})
		if err != nil {
			t.Fatalf("DetectMoodRegions() error: %v", err)
		}
		if len(regions) != 0 || len(outliers) != 3 {
			t.Errorf("got %d regions, %d outliers; want 0, 3", len(regions), len(outliers))
		}
	})

	t.Run("minimum size larger than catalog", func(t *testing.T) {
		songs := sampleSongs()
		regions, outliers, err := DetectMoodRegions(songs, RegionConfig{K: 1, MinRegionSize: 50})
		if err != nil {
			t.Fatalf("DetectMoodRegions() error: %v", err)
		}
		if len(regions) != 0 || len(outliers) != len(songs) {
			t.Errorf("got %d regions, %d outliers; want 0, %d", len(regions), len(outliers), len(songs))
		}
	})

	t.Run("empty", func(t *testing.T) {
		regions, outliers, err := DetectMoodRegions(nil, DefaultRegionConfig())
		if err != nil || regions != nil || outliers != nil {
			t.Errorf("DetectMoodRegions(nil) = %v, %v, %v", regions, outliers, err)
		}
	})
}

func TestRegionName(t *testing.T) {
	tests := []struct {
		centroid Centroid
		want     string
	}{
		{Centroid{Energy: 8, Valence: 8, Arousal: 8}, "Upbeat & Bright"},
		{Centroid{Energy: 8, Valence: 3, Arousal: 9}, "Intense & Dark"},
		{Centroid{Energy: 3, Valence: 7, Arousal: 3}, "Chill & Happy (Calm)"},
		{Centroid{Energy: 2, Valence: 2, Arousal: 4}, "Reflective & Melancholy (Calm)"},
		{Centroid{Energy: 6, Valence: 5.5, Arousal: 5}, "Chill & Happy"},
	}
	for _, tt := range tests {
		if got := regionName(tt.centroid); got != tt.want {
			t.Errorf("regionName(%+v) = %q, want %q", tt.centroid, got, tt.want)
		}
	}
}

func TestFormatRegionSummary(t *testing.T) {
	regions := []Region{
		{
			Name:     "Upbeat & Bright",
			Centroid: Centroid{Energy: 9, Valence: 9.5, Arousal: 8},
			Songs: []mood.Song{
				song(1, "One", 9, 8, 9),
				song(2, "Two", 9, 8, 9),
				song(3, "Three", 9, 8, 9),
				song(4, "Four", 9, 8, 9),
			},
		},
		{
			Name:  "Chill & Happy (Calm)",
			Songs: []mood.Song{song(5, "Five", 2, 2, 8)},
		},
	}

	got := FormatRegionSummary(regions, 2)
	for _, want := range []string{
		"Found 2 mood regions from 7 songs (2 outliers skipped)",
		"Region 1: Upbeat & Bright (4 songs)",
		"Energy 9.0, Valence 9.5, Arousal 8.0",
		`"Three" - Artist`,
		"... and 1 more",
		"Region 2: Chill & Happy (Calm) (1 song)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, `"Four"`) {
		t.Errorf("summary lists more than %d sample songs:\n%s", sampleSongCount, got)
	}

	empty := FormatRegionSummary(nil, 3)
	if empty != "No mood regions found from 3 songs (3 outliers skipped)\n" {
		t.Errorf("empty summary = %q", empty)
	}
}
