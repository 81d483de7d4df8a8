package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a learner tracked for history and feedback.
type User struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

// StudySession is one continuous study period for a user. At most one
// session per user is active at a time; starting a new one ends the rest.
type StudySession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Topic     string
	StartedAt time.Time
	EndedAt   *time.Time
	Active    bool
}

// EmotionLog is one persisted fusion output, kept for trend analysis.
// The raw per-channel readings ride along for later fusion debugging.
type EmotionLog struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	SessionID        *uuid.UUID
	Emotion          EmotionLabel
	Confidence       float64
	Source           string // "facial", "voice", or "fused"
	FacialEmotion    *EmotionLabel
	FacialConfidence *float64
	VoiceEmotion     *EmotionLabel
	VoiceConfidence  *float64
	Timestamp        time.Time
}

// InterventionRecord is a persisted non-silent intervention.
type InterventionRecord struct {
	ID        uuid.UUID
	SessionID *uuid.UUID
	Emotion   EmotionLabel
	Type      InterventionType
	Message   string
	CreatedAt time.Time
}

// Feedback is an explicit user rating of the system.
type Feedback struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SessionID *uuid.UUID
	Rating    int    // 1-5
	Text      string
	Kind      string // "emotion_accuracy", "intervention_helpfulness", "overall"
	CreatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, userID uuid.UUID, topic string, startedAt time.Time) (*StudySession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StudySession, error)
	// EndActiveForUser closes all active sessions of the user, returning how
	// many were closed.
	EndActiveForUser(ctx context.Context, userID uuid.UUID, endedAt time.Time) (int, error)
	End(ctx context.Context, id uuid.UUID, endedAt time.Time) (*StudySession, error)
	GetActiveForUser(ctx context.Context, userID uuid.UUID) (*StudySession, error)
}

type EmotionLogRepository interface {
	Insert(ctx context.Context, log *EmotionLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]EmotionLog, error)
}

type InterventionRepository interface {
	Insert(ctx context.Context, rec *InterventionRecord) error
}

type FeedbackRepository interface {
	Insert(ctx context.Context, fb *Feedback) error
}
