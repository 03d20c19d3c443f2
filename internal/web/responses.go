package web

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/clustering"
	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/recommend"
	"github.com/justestif/go-moodbeats/internal/store"
)

// analyzeRequest is the body of POST /mood/analyze.
type analyzeRequest struct {
	MoodDescription        string `json:"moodDescription"`
	Context                string `json:"context"`
	IncludeExplicitContent bool   `json:"includeExplicitContent"`
	MaxRecommendations     *int   `json:"maxRecommendations"`
}

type analysisResponse struct {
	ID                uuid.UUID                `json:"id"`
	MoodDescription   string                   `json:"moodDescription"`
	Context           string                   `json:"context,omitempty"`
	PrimaryEmotions   []string                 `json:"primaryEmotions"`
	EnergyLevel       *int                     `json:"energyLevel"`
	ArousalLevel      *int                     `json:"arousalLevel"`
	Valence           *int                     `json:"valence"`
	MoodSummary       string                   `json:"moodSummary"`
	RecommendedGenres []string                 `json:"recommendedGenres"`
	Recommendations   []recommendationResponse `json:"recommendations"`
	AnalysisInsight   string                   `json:"analysisInsight"`
	Fallback          bool                     `json:"fallback"`
	CreatedAt         time.Time                `json:"createdAt"`
}

type recommendationResponse struct {
	ID                uuid.UUID `json:"id"`
	Rank              int       `json:"rank"`
	SongID            int64     `json:"songId"`
	Title             string    `json:"title"`
	Artist            string    `json:"artist"`
	Genre             string    `json:"genre,omitempty"`
	MatchScore        float64   `json:"matchScore"`
	MatchReason       string    `json:"matchReason"`
	MatchStrength     string    `json:"matchStrength"`
	PreviewURL        string    `json:"previewUrl,omitempty"`
	FormattedDuration string    `json:"formattedDuration"`
}

func newAnalysisResponse(r *recommend.Response) analysisResponse {
	a := r.Analysis
	recs := make([]recommendationResponse, len(r.Recommendations))
	for i, item := range r.Recommendations {
		recs[i] = recommendationResponse{
			ID:                item.ID,
			Rank:              item.Rank,
			SongID:            item.Song.ID,
			Title:             item.Song.Title,
			Artist:            item.Song.Artist,
			Genre:             item.Song.GenreName,
			MatchScore:        item.Score,
			MatchReason:       item.Reason,
			MatchStrength:     item.Strength(),
			PreviewURL:        item.Song.PreviewURL,
			FormattedDuration: item.Song.FormattedDuration(),
		}
	}
	return analysisResponse{
		ID:                a.ID,
		MoodDescription:   a.Description,
		Context:           a.Context,
		PrimaryEmotions:   nonNil(a.Emotions),
		EnergyLevel:       a.Energy,
		ArousalLevel:      a.Arousal,
		Valence:           a.Valence,
		MoodSummary:       r.Summary(),
		RecommendedGenres: nonNil(r.Genres),
		Recommendations:   recs,
		AnalysisInsight:   a.Insight,
		Fallback:          a.Fallback,
		CreatedAt:         a.CreatedAt,
	}
}

type ratingRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type ratingResponse struct {
	ID                uuid.UUID `json:"id"`
	Rating            *int      `json:"rating"`
	RatingDescription string    `json:"ratingDescription"`
	Feedback          string    `json:"feedback,omitempty"`
	AccuracyScore     float64   `json:"accuracyScore"`
}

func newRatingResponse(rec *store.Recommendation) ratingResponse {
	return ratingResponse{
		ID:                rec.ID,
		Rating:            rec.Rating,
		RatingDescription: rec.RatingDescription(),
		Feedback:          rec.Feedback,
		AccuracyScore:     rec.AccuracyScore(),
	}
}

type genreResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Characteristics string     `json:"characteristics,omitempty"`
	Energy          mood.Range `json:"energy"`
	Valence         mood.Range `json:"valence"`
	Arousal         mood.Range `json:"arousal"`
}

func newGenreResponse(g mood.Genre) genreResponse {
	return genreResponse{
		ID:              g.ID,
		Name:            g.Name,
		Characteristics: g.Characteristics,
		Energy:          g.Energy,
		Valence:         g.Valence,
		Arousal:         g.Arousal,
	}
}

type songResponse struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	Genre             string `json:"genre,omitempty"`
	Energy            int    `json:"energy"`
	Arousal           int    `json:"arousal"`
	Valence           int    `json:"valence"`
	Quadrant          string `json:"quadrant"`
	TempoBPM          *int   `json:"tempoBpm,omitempty"`
	FastTempo         bool   `json:"fastTempo"`
	DurationMs        *int64 `json:"durationMs,omitempty"`
	FormattedDuration string `json:"formattedDuration"`
	Explicit          bool   `json:"explicit"`
	SpotifyID         string `json:"spotifyId,omitempty"`
	PreviewURL        string `json:"previewUrl,omitempty"`
}

func newSongResponse(s mood.Song) songResponse {
	return songResponse{
		ID:                s.ID,
		Title:             s.Title,
		Artist:            s.Artist,
		Genre:             s.GenreName,
		Energy:            s.Mood.Energy(),
		Arousal:           s.Mood.Arousal(),
		Valence:           s.Mood.Valence(),
		Quadrant:          s.Mood.Quadrant(),
		TempoBPM:          s.TempoBPM,
		FastTempo:         s.IsFastTempo(),
		DurationMs:        s.DurationMs,
		FormattedDuration: s.FormattedDuration(),
		Explicit:          s.Explicit,
		SpotifyID:         s.SpotifyID,
		PreviewURL:        s.PreviewURL,
	}
}

func newSongResponses(songs []mood.Song) []songResponse {
	out := make([]songResponse, len(songs))
	for i, s := range songs {
		out[i] = newSongResponse(s)
	}
	return out
}

type regionResponse struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Centroid    clustering.Centroid `json:"centroid"`
	SongCount   int                 `json:"songCount"`
	Songs       []songResponse      `json:"songs"`
}

type regionsResponse struct {
	Regions      []regionResponse `json:"regions"`
	OutlierCount int              `json:"outlierCount"`
	TotalSongs   int              `json:"totalSongs"`
}

func newRegionsResponse(res *recommend.RegionsResult) regionsResponse {
	regions := make([]regionResponse, len(res.Regions))
	for i, r := range res.Regions {
		regions[i] = regionResponse{
			Name:        r.Name,
			Description: r.Description,
			Centroid:    r.Centroid,
			SongCount:   len(r.Songs),
			Songs:       newSongResponses(r.Songs),
		}
	}
	return regionsResponse{
		Regions:      regions,
		OutlierCount: res.OutlierCount,
		TotalSongs:   res.TotalSongs,
	}
}

type createPlaylistRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Public      bool       `json:"public"`
	AnalysisID  *uuid.UUID `json:"analysisId"`
}

type addSongRequest struct {
	SongID   int64 `json:"songId"`
	Position int   `json:"position"` // 0 appends
}

type playlistSongResponse struct {
	Position          int       `json:"position"`
	SongID            int64     `json:"songId"`
	Title             string    `json:"title"`
	Artist            string    `json:"artist"`
	FormattedDuration string    `json:"formattedDuration"`
	AddedAt           time.Time `json:"addedAt"`
}

type playlistResponse struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Public        bool                   `json:"public"`
	AnalysisID    *uuid.UUID             `json:"analysisId,omitempty"`
	SongCount     int                    `json:"songCount"`
	TotalDuration string                 `json:"totalDuration"`
	Songs         []playlistSongResponse `json:"songs"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func newPlaylistResponse(v *recommend.PlaylistView) playlistResponse {
	byID := make(map[int64]mood.Song, len(v.Songs))
	for _, s := range v.Songs {
		byID[s.ID] = s
	}

	p := v.Playlist
	songs := make([]playlistSongResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		s := byID[e.SongID]
		songs = append(songs, playlistSongResponse{
			Position:          e.Position,
			SongID:            e.SongID,
			Title:             s.Title,
			Artist:            s.Artist,
			FormattedDuration: s.FormattedDuration(),
			AddedAt:           e.AddedAt,
		})
	}

	return playlistResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Public:        p.Public,
		AnalysisID:    p.AnalysisID,
		SongCount:     p.Len(),
		TotalDuration: v.FormattedDuration(),
		Songs:         songs,
		CreatedAt:     p.CreatedAt,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
