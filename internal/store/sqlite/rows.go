package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
)

type userRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"uniqueIndex;not null"`
	Email     string
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

type genreRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"uniqueIndex;not null"`
	Characteristics string
	EnergyMin       int
	EnergyMax       int
	ValenceMin      int
	ValenceMax      int
	ArousalMin      int
	ArousalMax      int
	CreatedAt       time.Time
}

func (genreRow) TableName() string { return "genres" }

type songRow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	Title      string    `gorm:"uniqueIndex:idx_song_unique,priority:1;not null"`
	Artist     string    `gorm:"uniqueIndex:idx_song_unique,priority:2;not null"`
	GenreID    *int64    `gorm:"index"`
	Genre      *genreRow `gorm:"foreignKey:GenreID"`
	Energy     int
	Arousal    int
	Valence    int
	TempoBPM   *int
	DurationMs *int64
	SpotifyID  string `gorm:"index"`
	PreviewURL string
	Explicit   bool
	CreatedAt  time.Time
}

func (songRow) TableName() string { return "songs" }

type analysisRow struct {
	ID                string `gorm:"primaryKey;type:varchar(36)"`
	UserID            int64  `gorm:"index"`
	Description       string
	Context           string
	Emotions          []string `gorm:"serializer:json"`
	Energy            *int
	Arousal           *int
	Valence           *int
	RecommendedGenres []string `gorm:"serializer:json"`
	Insight           string
	Raw               string
	Fallback          bool
	CreatedAt         time.Time
}

func (analysisRow) TableName() string { return "mood_analyses" }

type recommendationRow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	AnalysisID string `gorm:"type:varchar(36);index"`
	UserID     int64
	SongID     int64
	Score      float64
	Reason     string
	Rank       int
	Rating     *int
	Feedback   string
	CreatedAt  time.Time
}

func (recommendationRow) TableName() string { return "recommendations" }

type playlistRow struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      int64  `gorm:"index"`
	AnalysisID  *string
	Name        string `gorm:"not null"`
	Description string
	Public      bool
	CreatedAt   time.Time
}

func (playlistRow) TableName() string { return "playlists" }

type playlistEntryRow struct {
	PlaylistID string `gorm:"primaryKey;type:varchar(36)"`
	Position   int    `gorm:"primaryKey"`
	SongID     int64  `gorm:"index"`
	AddedAt    time.Time
}

func (playlistEntryRow) TableName() string { return "playlist_songs" }

func fromGenre(g *mood.Genre) genreRow {
	return genreRow{
		ID:              g.ID,
		Name:            g.Name,
		Characteristics: g.Characteristics,
		EnergyMin:       g.Energy.Min,
		EnergyMax:       g.Energy.Max,
		ValenceMin:      g.Valence.Min,
		ValenceMax:      g.Valence.Max,
		ArousalMin:      g.Arousal.Min,
		ArousalMax:      g.Arousal.Max,
	}
}

func (r genreRow) toGenre() mood.Genre {
	return mood.Genre{
		ID:              r.ID,
		Name:            r.Name,
		Characteristics: r.Characteristics,
		Energy:          mood.Range{Min: r.EnergyMin, Max: r.EnergyMax},
		Valence:         mood.Range{Min: r.ValenceMin, Max: r.ValenceMax},
		Arousal:         mood.Range{Min: r.ArousalMin, Max: r.ArousalMax},
	}
}

func fromSong(s *mood.Song) songRow {
	return songRow{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		GenreID:    s.GenreID,
		Energy:     s.Mood.Energy(),
		Arousal:    s.Mood.Arousal(),
		Valence:    s.Mood.Valence(),
		TempoBPM:   s.TempoBPM,
		DurationMs: s.DurationMs,
		SpotifyID:  s.SpotifyID,
		PreviewURL: s.PreviewURL,
		Explicit:   s.Explicit,
	}
}

func (r songRow) toSong() (mood.Song, error) {
	v, err := mood.ParseVector(r.Energy, r.Arousal, r.Valence)
	if err != nil {
		return mood.Song{}, fmt.Errorf("decoding song %d: %w", r.ID, err)
	}
	s := mood.Song{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		GenreID:    r.GenreID,
		Mood:       v,
		TempoBPM:   r.TempoBPM,
		DurationMs: r.DurationMs,
		SpotifyID:  r.SpotifyID,
		PreviewURL: r.PreviewURL,
		Explicit:   r.Explicit,
	}
	if r.Genre != nil {
		s.GenreName = r.Genre.Name
	}
	return s, nil
}

func fromAnalysis(a *store.Analysis) analysisRow {
	return analysisRow{
		ID:                a.ID.String(),
		UserID:            a.UserID,
		Description:       a.Description,
		Context:           a.Context,
		Emotions:          a.Emotions,
		Energy:            a.Energy,
		Arousal:           a.Arousal,
		Valence:           a.Valence,
		RecommendedGenres: a.RecommendedGenres,
		Insight:           a.Insight,
		Raw:               a.Raw,
		Fallback:          a.Fallback,
		CreatedAt:         a.CreatedAt,
	}
}

func (r analysisRow) toAnalysis() (store.Analysis, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("parsing analysis id: %w", err)
	}
	return store.Analysis{
		ID:                id,
		UserID:            r.UserID,
		Description:       r.Description,
		Context:           r.Context,
		Emotions:          r.Emotions,
		Energy:            r.Energy,
		Arousal:           r.Arousal,
		Valence:           r.Valence,
		RecommendedGenres: r.RecommendedGenres,
		Insight:           r.Insight,
		Raw:               r.Raw,
		Fallback:          r.Fallback,
		CreatedAt:         r.CreatedAt,
	}, nil
}

func fromRecommendation(rec *store.Recommendation) recommendationRow {
	return recommendationRow{
		ID:         rec.ID.String(),
		AnalysisID: rec.AnalysisID.String(),
		UserID:     rec.UserID,
		SongID:     rec.SongID,
		Score:      rec.Score,
		Reason:     rec.Reason,
		Rank:       rec.Rank,
		Rating:     rec.Rating,
		Feedback:   rec.Feedback,
		CreatedAt:  rec.CreatedAt,
	}
}

func (r recommendationRow) toRecommendation() (store.Recommendation, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return store.Recommendation{}, fmt.Errorf("parsing recommendation id: %w", err)
	}
	analysisID, err := uuid.Parse(r.AnalysisID)
	if err != nil {
		return store.Recommendation{}, fmt.Errorf("parsing analysis id: %w", err)
	}
	return store.Recommendation{
		ID:         id,
		AnalysisID: analysisID,
		UserID:     r.UserID,
		SongID:     r.SongID,
		Score:      r.Score,
		Reason:     r.Reason,
		Rank:       r.Rank,
		Rating:     r.Rating,
		Feedback:   r.Feedback,
		CreatedAt:  r.CreatedAt,
	}, nil
}

func fromPlaylist(p *playlist.Playlist) (playlistRow, []playlistEntryRow) {
	row := playlistRow{
		ID:          p.ID.String(),
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Public:      p.Public,
		CreatedAt:   p.CreatedAt,
	}
	if p.AnalysisID != nil {
		id := p.AnalysisID.String()
		row.AnalysisID = &id
	}

	entries := make([]playlistEntryRow, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = playlistEntryRow{
			PlaylistID: row.ID,
			Position:   e.Position,
			SongID:     e.SongID,
			AddedAt:    e.AddedAt,
		}
	}
	return row, entries
}

func (r playlistRow) toPlaylist(entries []playlistEntryRow) (playlist.Playlist, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("parsing playlist id: %w", err)
	}
	p := playlist.Playlist{
		ID:          id,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		Public:      r.Public,
		CreatedAt:   r.CreatedAt,
		Entries:     make([]playlist.Entry, len(entries)),
	}
	if r.AnalysisID != nil {
		aid, err := uuid.Parse(*r.AnalysisID)
		if err != nil {
			return playlist.Playlist{}, fmt.Errorf("parsing playlist analysis id: %w", err)
		}
		p.AnalysisID = &aid
	}
	for i, e := range entries {
		p.Entries[i] = playlist.Entry{SongID: e.SongID, Position: e.Position, AddedAt: e.AddedAt}
	}
	return p, nil
}
