package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/studypulse/internal/domain"
)

// FeedbackRepo implements domain.FeedbackRepository backed by PostgreSQL.
type FeedbackRepo struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepo creates a FeedbackRepo from the shared connection pool.
func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

func (r *FeedbackRepo) Insert(ctx context.Context, fb *domain.Feedback) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO feedback (user_id, session_id, rating, text, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		fb.UserID, fb.SessionID, fb.Rating, fb.Text, fb.Kind, fb.CreatedAt,
	).Scan(&fb.ID)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}
