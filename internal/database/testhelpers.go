package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/studypulse/internal/domain"
)

// CreateTestUser is a helper that creates a user for testing.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, username string) *domain.User {
	t.Helper()

	repo := NewUserRepo(pool)
	user, err := repo.Create(context.Background(), username)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}

// CreateTestSession is a helper that starts a study session for testing.
func CreateTestSession(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, topic string) *domain.StudySession {
	t.Helper()

	repo := NewSessionRepo(pool)
	session, err := repo.Create(context.Background(), userID, topic, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, session.Active)

	return session
}
