// Package catalog fills the genre and song catalog, from the embedded seed
// data or from a Spotify playlist.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/store"
)

//go:embed seed.json
var seedJSON []byte

type seedData struct {
	Genres []seedGenre `json:"genres"`
	Songs  []seedSong  `json:"songs"`
}

type seedGenre struct {
	Name            string `json:"name"`
	Characteristics string `json:"characteristics"`
	Energy          [2]int `json:"energy"`
	Valence         [2]int `json:"valence"`
	Arousal         [2]int `json:"arousal"`
}

type seedSong struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Genre      string `json:"genre"`
	Energy     int    `json:"energy"`
	Arousal    int    `json:"arousal"`
	Valence    int    `json:"valence"`
	Tempo      *int   `json:"tempo"`
	DurationMs *int64 `json:"duration_ms"`
	Explicit   bool   `json:"explicit"`
}

// Stats counts what a seed or import wrote.
type Stats struct {
	Genres  int
	Songs   int
	Skipped int
}

// SeedGenres returns the embedded genre profiles.
func SeedGenres() ([]mood.Genre, error) {
	data, err := loadSeed()
	if err != nil {
		return nil, err
	}
	genres := make([]mood.Genre, 0, len(data.Genres))
	for _, sg := range data.Genres {
		g, err := sg.genre()
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, nil
}

// Seed upserts the embedded genres and songs and ensures the demo user
// exists. Running it again updates rows in place.
func Seed(ctx context.Context, s store.Store) (Stats, error) {
	var stats Stats

	data, err := loadSeed()
	if err != nil {
		return stats, err
	}

	if _, err := s.Users().Ensure(ctx, store.DefaultUsername); err != nil {
		return stats, err
	}

	genreIDs := make(map[string]int64, len(data.Genres))
	for _, sg := range data.Genres {
		g, err := sg.genre()
		if err != nil {
			return stats, err
		}
		if err := s.Genres().Upsert(ctx, &g); err != nil {
			return stats, fmt.Errorf("seeding genres: %w", err)
		}
		genreIDs[g.Name] = g.ID
		stats.Genres++
	}

	for _, ss := range data.Songs {
		v, err := mood.ParseVector(ss.Energy, ss.Arousal, ss.Valence)
		if err != nil {
			return stats, fmt.Errorf("seed song %q: %w", ss.Title, err)
		}
		song := mood.Song{
			Title:      ss.Title,
			Artist:     ss.Artist,
			Mood:       v,
			TempoBPM:   ss.Tempo,
			DurationMs: ss.DurationMs,
			Explicit:   ss.Explicit,
		}
		if id, ok := genreIDs[ss.Genre]; ok {
			song.GenreID = &id
		}
		if err := s.Songs().Upsert(ctx, &song); err != nil {
			return stats, fmt.Errorf("seeding songs: %w", err)
		}
		stats.Songs++
	}

	return stats, nil
}

func loadSeed() (*seedData, error) {
	var data seedData
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return nil, fmt.Errorf("decoding seed catalog: %w", err)
	}
	return &data, nil
}

func (sg seedGenre) genre() (mood.Genre, error) {
	energy, err := mood.NewRange(sg.Energy[0], sg.Energy[1])
	if err != nil {
		return mood.Genre{}, fmt.Errorf("seed genre %q energy: %w", sg.Name, err)
	}
	valence, err := mood.NewRange(sg.Valence[0], sg.Valence[1])
	if err != nil {
		return mood.Genre{}, fmt.Errorf("seed genre %q valence: %w", sg.Name, err)
	}
	arousal, err := mood.NewRange(sg.Arousal[0], sg.Arousal[1])
	if err != nil {
		return mood.Genre{}, fmt.Errorf("seed genre %q arousal: %w", sg.Name, err)
	}
	g, err := mood.NewGenre(sg.Name, energy, valence, arousal)
	if err != nil {
		return mood.Genre{}, err
	}
	g.Characteristics = sg.Characteristics
	return g, nil
}
