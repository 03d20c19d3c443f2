package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-moodbeats/internal/store"
)

// AnalysisRepository handles mood analysis and recommendation operations.
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

// Create inserts an analysis and its recommendations in one transaction.
func (r *AnalysisRepository) Create(ctx context.Context, a *store.Analysis, recs []store.Recommendation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO mood_analyses (id, user_id, description, context, emotions, energy, arousal, valence, recommended_genres, insight, raw, fallback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		a.ID,
		a.UserID,
		a.Description,
		a.Context,
		nonNil(a.Emotions),
		a.Energy,
		a.Arousal,
		a.Valence,
		nonNil(a.RecommendedGenres),
		a.Insight,
		a.Raw,
		a.Fallback,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}

	if len(recs) > 0 {
		ids := make([]uuid.UUID, len(recs))
		songIDs := make([]int64, len(recs))
		scores := make([]float64, len(recs))
		reasons := make([]string, len(recs))
		ranks := make([]int32, len(recs))
		for i := range recs {
			rec := &recs[i]
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}
			rec.AnalysisID = a.ID
			rec.UserID = a.UserID
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = now
			}
			ids[i] = rec.ID
			songIDs[i] = rec.SongID
			scores[i] = rec.Score
			reasons[i] = rec.Reason
			ranks[i] = int32(rec.Rank)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO recommendations (id, analysis_id, user_id, song_id, score, reason, rank, created_at)
			SELECT u.id, $1, $2, u.song_id, u.score, u.reason, u.rank, $8
			FROM unnest($3::uuid[], $4::bigint[], $5::float8[], $6::text[], $7::int[])
				AS u(id, song_id, score, reason, rank)
		`, a.ID, a.UserID, ids, songIDs, scores, reasons, ranks, now)
		if err != nil {
			return fmt.Errorf("inserting recommendations: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves an analysis by ID.
func (r *AnalysisRepository) Get(ctx context.Context, id uuid.UUID) (*store.Analysis, error) {
	query := `
		SELECT id, user_id, description, context, emotions, energy, arousal, valence,
			recommended_genres, insight, raw, fallback, created_at
		FROM mood_analyses
		WHERE id = $1
	`
	var a store.Analysis
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.Description,
		&a.Context,
		&a.Emotions,
		&a.Energy,
		&a.Arousal,
		&a.Valence,
		&a.RecommendedGenres,
		&a.Insight,
		&a.Raw,
		&a.Fallback,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	return &a, nil
}

const recommendationColumns = `id, analysis_id, user_id, song_id, score, reason, rank, rating, feedback, created_at`

func scanRecommendation(row pgx.Row) (store.Recommendation, error) {
	var rec store.Recommendation
	err := row.Scan(
		&rec.ID,
		&rec.AnalysisID,
		&rec.UserID,
		&rec.SongID,
		&rec.Score,
		&rec.Reason,
		&rec.Rank,
		&rec.Rating,
		&rec.Feedback,
		&rec.CreatedAt,
	)
	return rec, err
}

// Recommendations retrieves the recommendations of an analysis ordered by rank.
func (r *AnalysisRepository) Recommendations(ctx context.Context, analysisID uuid.UUID) ([]store.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE analysis_id = $1 ORDER BY rank`
	rows, err := r.pool.Query(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	defer rows.Close()

	var recs []store.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}
	return recs, nil
}

// GetRecommendation retrieves a recommendation by ID.
func (r *AnalysisRepository) GetRecommendation(ctx context.Context, id uuid.UUID) (*store.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`
	rec, err := scanRecommendation(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying recommendation: %w", err)
	}
	return &rec, nil
}

// SaveRating updates the rating and feedback of a recommendation.
func (r *AnalysisRepository) SaveRating(ctx context.Context, rec *store.Recommendation) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE recommendations SET rating = $2, feedback = $3 WHERE id = $1
	`, rec.ID, rec.Rating, rec.Feedback)
	if err != nil {
		return fmt.Errorf("updating rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating rating: %w", store.ErrNotFound)
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
