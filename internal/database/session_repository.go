package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/studypulse/internal/domain"
)

// sessionColumns must match the Scan order in scanSession.
const sessionColumns = `id, user_id, topic, started_at, ended_at, active`

// SessionRepo implements domain.SessionRepository backed by PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepo creates a SessionRepo from the shared connection pool.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func scanSession(row pgx.Row) (*domain.StudySession, error) {
	var session domain.StudySession
	err := row.Scan(
		&session.ID, &session.UserID, &session.Topic,
		&session.StartedAt, &session.EndedAt, &session.Active,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) Create(ctx context.Context, userID uuid.UUID, topic string, startedAt time.Time) (*domain.StudySession, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		INSERT INTO study_sessions (user_id, topic, started_at, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING `+sessionColumns,
		userID, topic, startedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE id = $1`,
		id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) EndActiveForUser(ctx context.Context, userID uuid.UUID, endedAt time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET active = FALSE, ended_at = $2
		WHERE user_id = $1 AND active`,
		userID, endedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to end active sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *SessionRepo) End(ctx context.Context, id uuid.UUID, endedAt time.Time) (*domain.StudySession, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		UPDATE study_sessions
		SET active = FALSE, ended_at = $2
		WHERE id = $1
		RETURNING `+sessionColumns,
		id, endedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) GetActiveForUser(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM study_sessions
		WHERE user_id = $1 AND active
		ORDER BY started_at DESC
		LIMIT 1`,
		userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}
