package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/justestif/go-moodbeats/internal/mood"
	"github.com/justestif/go-moodbeats/internal/playlist"
	"github.com/justestif/go-moodbeats/internal/store"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Ensure(ctx context.Context, username string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = store.DefaultUsername
	}

	var row userRow
	err := r.db.WithContext(ctx).
		Where(userRow{Username: username}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("ensuring user %q: %w", username, err)
	}
	return &store.User{ID: row.ID, Username: row.Username, Email: row.Email, CreatedAt: row.CreatedAt}, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying user: %w", notFound(err))
	}
	return &store.User{ID: row.ID, Username: row.Username, Email: row.Email, CreatedAt: row.CreatedAt}, nil
}

type genreRepository struct {
	db *gorm.DB
}

func (r *genreRepository) Upsert(ctx context.Context, g *mood.Genre) error {
	if err := g.Validate(); err != nil {
		return err
	}
	row := fromGenre(g)
	row.ID = 0

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"characteristics",
			"energy_min", "energy_max",
			"valence_min", "valence_max",
			"arousal_min", "arousal_max",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting genre %q: %w", g.Name, err)
	}

	var stored genreRow
	if err := db.Where("name = ?", row.Name).First(&stored).Error; err != nil {
		return fmt.Errorf("reloading genre %q: %w", g.Name, notFound(err))
	}
	g.ID = stored.ID
	return nil
}

func (r *genreRepository) GetByName(ctx context.Context, name string) (*mood.Genre, error) {
	var row genreRow
	err := r.db.WithContext(ctx).
		Where("lower(name) = lower(?)", strings.TrimSpace(name)).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("querying genre: %w", notFound(err))
	}
	g := row.toGenre()
	return &g, nil
}

func (r *genreRepository) List(ctx context.Context) ([]mood.Genre, error) {
	var rows []genreRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying genres: %w", err)
	}
	genres := make([]mood.Genre, len(rows))
	for i, row := range rows {
		genres[i] = row.toGenre()
	}
	return genres, nil
}

type songRepository struct {
	db *gorm.DB
}

func (r *songRepository) Upsert(ctx context.Context, s *mood.Song) error {
	if err := s.Validate(); err != nil {
		return err
	}
	row := fromSong(s)
	row.ID = 0

	db := r.db.WithContext(ctx)
	err := db.Omit("Genre").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title"}, {Name: "artist"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"genre_id", "energy", "arousal", "valence",
			"tempo_bpm", "duration_ms", "spotify_id", "preview_url", "explicit",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting song %q: %w", s.DisplayName(), err)
	}

	var stored songRow
	if err := db.Where("title = ? AND artist = ?", row.Title, row.Artist).First(&stored).Error; err != nil {
		return fmt.Errorf("reloading song %q: %w", s.DisplayName(), notFound(err))
	}
	s.ID = stored.ID
	return nil
}

func (r *songRepository) Get(ctx context.Context, id int64) (*mood.Song, error) {
	var row songRow
	if err := r.db.WithContext(ctx).Preload("Genre").First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("querying song: %w", notFound(err))
	}
	s, err := row.toSong()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *songRepository) List(ctx context.Context) ([]mood.Song, error) {
	var rows []songRow
	if err := r.db.WithContext(ctx).Preload("Genre").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	return toSongs(rows)
}

func (r *songRepository) ListByIDs(ctx context.Context, ids []int64) ([]mood.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []songRow
	if err := r.db.WithContext(ctx).Preload("Genre").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying songs by id: %w", err)
	}
	songs, err := toSongs(rows)
	if err != nil {
		return nil, err
	}
	return store.OrderByIDs(songs, ids), nil
}

func (r *songRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&songRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return int(n), nil
}

func toSongs(rows []songRow) ([]mood.Song, error) {
	songs := make([]mood.Song, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSong()
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, nil
}

type analysisRepository struct {
	db *gorm.DB
}

func (r *analysisRepository) Create(ctx context.Context, a *store.Analysis, recs []store.Recommendation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	rows := make([]recommendationRow, len(recs))
	for i := range recs {
		rec := &recs[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		rec.AnalysisID = a.ID
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rows[i] = fromRecommendation(rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := fromAnalysis(a)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("inserting analysis: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return fmt.Errorf("inserting recommendations: %w", err)
			}
		}
		return nil
	})
}

func (r *analysisRepository) Get(ctx context.Context, id uuid.UUID) (*store.Analysis, error) {
	var row analysisRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying analysis: %w", notFound(err))
	}
	a, err := row.toAnalysis()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *analysisRepository) Recommendations(ctx context.Context, analysisID uuid.UUID) ([]store.Recommendation, error) {
	var rows []recommendationRow
	err := r.db.WithContext(ctx).
		Where("analysis_id = ?", analysisID.String()).
		Order("rank").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}

	recs := make([]store.Recommendation, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecommendation()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *analysisRepository) GetRecommendation(ctx context.Context, id uuid.UUID) (*store.Recommendation, error) {
	var row recommendationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying recommendation: %w", notFound(err))
	}
	rec, err := row.toRecommendation()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *analysisRepository) SaveRating(ctx context.Context, rec *store.Recommendation) error {
	res := r.db.WithContext(ctx).
		Model(&recommendationRow{}).
		Where("id = ?", rec.ID.String()).
		Updates(map[string]any{"rating": rec.Rating, "feedback": rec.Feedback})
	if res.Error != nil {
		return fmt.Errorf("updating rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating rating: %w", store.ErrNotFound)
	}
	return nil
}

type playlistRepository struct {
	db *gorm.DB
}

func (r *playlistRepository) Save(ctx context.Context, p *playlist.Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row, entries := fromPlaylist(p)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "public", "analysis_id"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upserting playlist: %w", err)
		}
		if err := tx.Where("playlist_id = ?", row.ID).Delete(&playlistEntryRow{}).Error; err != nil {
			return fmt.Errorf("clearing playlist songs: %w", err)
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("inserting playlist songs: %w", err)
			}
		}
		return nil
	})
}

func (r *playlistRepository) Get(ctx context.Context, id uuid.UUID) (*playlist.Playlist, error) {
	db := r.db.WithContext(ctx)

	var row playlistRow
	if err := db.Where("id = ?", id.String()).First(&row).Error; err != nil {
		return nil, fmt.Errorf("querying playlist: %w", notFound(err))
	}

	var entries []playlistEntryRow
	if err := db.Where("playlist_id = ?", row.ID).Order("position").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying playlist songs: %w", err)
	}

	p, err := row.toPlaylist(entries)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playlistRepository) ListForUser(ctx context.Context, userID int64) ([]playlist.Playlist, error) {
	db := r.db.WithContext(ctx)

	var rows []playlistRow
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var entries []playlistEntryRow
	if err := db.Where("playlist_id IN ?", ids).Order("playlist_id, position").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("querying playlist songs: %w", err)
	}
	byPlaylist := make(map[string][]playlistEntryRow, len(rows))
	for _, e := range entries {
		byPlaylist[e.PlaylistID] = append(byPlaylist[e.PlaylistID], e)
	}

	playlists := make([]playlist.Playlist, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPlaylist(byPlaylist[row.ID])
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}
