package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/studypulse/internal/domain"
)

// InterventionRepo implements domain.InterventionRepository backed by PostgreSQL.
type InterventionRepo struct {
	pool *pgxpool.Pool
}

// NewInterventionRepo creates an InterventionRepo from the shared connection pool.
func NewInterventionRepo(pool *pgxpool.Pool) *InterventionRepo {
	return &InterventionRepo{pool: pool}
}

func (r *InterventionRepo) Insert(ctx context.Context, rec *domain.InterventionRecord) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO interventions (session_id, emotion, type, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		rec.SessionID, rec.Emotion, rec.Type, rec.Message, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert intervention: %w", err)
	}
	return nil
}
