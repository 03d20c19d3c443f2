package spotify

import (
	"context"
	"fmt"
	"math"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-moodbeats/internal/mood"
)

const maxTracksPerRequest = 100

// AudioFeatures holds the Spotify features used to place a track in mood space.
// All values except Tempo are in [0, 1].
type AudioFeatures struct {
	Energy       float32
	Valence      float32
	Danceability float32
	Tempo        float32 // BPM
}

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place. Tracks without features keep a nil Features.
// Batches requests to max 100 tracks per request per Spotify API limits.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	total := len(ids)
	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := ids[i:end]

		fmt.Printf("Fetching audio features %d-%d of %d...\n", i+1, end, total)

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			tracks[idx].Features = &AudioFeatures{
				Energy:       f.Energy,
				Valence:      f.Valence,
				Danceability: f.Danceability,
				Tempo:        f.Tempo,
			}
		}
	}

	return nil
}

// Level maps a [0, 1] feature onto the 1-10 mood scale.
func Level(x float32) int {
	return mood.ClampLevel(1 + int(math.Round(float64(x)*9)))
}

// tempoNorm maps the accepted BPM range onto [0, 1].
func tempoNorm(bpm float32) float32 {
	n := (bpm - mood.MinTempoBPM) / (mood.MaxTempoBPM - mood.MinTempoBPM)
	return max(0, min(1, n))
}

// Mood places the features in mood space. Arousal blends energy,
// danceability and normalized tempo.
func (f AudioFeatures) Mood() mood.Vector {
	arousal := 0.5*f.Energy + 0.25*f.Danceability + 0.25*tempoNorm(f.Tempo)
	return mood.NewVector(Level(f.Energy), Level(arousal), Level(f.Valence))
}

// TempoBPM returns the rounded tempo, or nil when it is outside 60-200 BPM.
func (f AudioFeatures) TempoBPM() *int {
	bpm := int(math.Round(float64(f.Tempo)))
	if bpm < mood.MinTempoBPM || bpm > mood.MaxTempoBPM {
		return nil
	}
	return &bpm
}
