package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/errors"
)

// FusionEngine is the slice of the fusion engine the service drives.
type FusionEngine interface {
	Start() bool
	Stop()
	Current() domain.FusedState
	Detailed() domain.DetailedState
}

// InterventionEngine is the slice of the intervention engine the service drives.
type InterventionEngine interface {
	GetIntervention(emotion domain.EmotionLabel, ictx domain.InterventionContext) *domain.Intervention
	SessionStats() domain.SessionStats
	ResetSession()
}

// Service is the application layer. It orchestrates users, study sessions,
// detection lifecycle, intervention requests, and persistence.
type Service struct {
	users         domain.UserRepository
	sessions      domain.SessionRepository
	emotionLogs   domain.EmotionLogRepository
	interventions domain.InterventionRepository
	feedback      domain.FeedbackRepository
	fusion        FusionEngine
	advisor       InterventionEngine
	clock         clockwork.Clock

	mu              sync.Mutex
	currentSession  *domain.StudySession
	detectionActive bool
}

// NewService creates the application layer service.
func NewService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	emotionLogs domain.EmotionLogRepository,
	interventions domain.InterventionRepository,
	feedback domain.FeedbackRepository,
	fusion FusionEngine,
	advisor InterventionEngine,
	clock clockwork.Clock,
) *Service {
	return &Service{
		users:         users,
		sessions:      sessions,
		emotionLogs:   emotionLogs,
		interventions: interventions,
		feedback:      feedback,
		fusion:        fusion,
		advisor:       advisor,
		clock:         clock,
	}
}

// CreateUser registers a new learner.
func (s *Service) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.ValidationError("username must not be empty")
	}
	return s.users.Create(ctx, username)
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// StartSession opens a new study session for the user. Any still-active
// sessions of the same user are closed first, and the intervention engine's
// per-session state is reset so cooldowns and rotation start fresh.
func (s *Service) StartSession(ctx context.Context, userID uuid.UUID, topic string) (*domain.StudySession, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if _, err := s.sessions.EndActiveForUser(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("failed to close previous sessions: %w", err)
	}

	session, err := s.sessions.Create(ctx, userID, topic, now)
	if err != nil {
		return nil, err
	}

	s.advisor.ResetSession()

	s.mu.Lock()
	s.currentSession = session
	s.mu.Unlock()

	return session, nil
}

// EndSession closes a study session and returns it together with its
// duration.
func (s *Service) EndSession(ctx context.Context, sessionID uuid.UUID) (*domain.StudySession, time.Duration, error) {
	session, err := s.sessions.End(ctx, sessionID, s.clock.Now().UTC())
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	if s.currentSession != nil && s.currentSession.ID == session.ID {
		s.currentSession = nil
	}
	s.mu.Unlock()

	var duration time.Duration
	if session.EndedAt != nil {
		duration = session.EndedAt.Sub(session.StartedAt)
	}
	return session, duration, nil
}

// StartDetection brings up the sensing channels and the fusion tick.
func (s *Service) StartDetection() error {
	if !s.fusion.Start() {
		return errors.ExternalError("no sensing channel available", nil)
	}

	s.mu.Lock()
	s.detectionActive = true
	s.mu.Unlock()
	return nil
}

// StopDetection halts the fusion tick and both sensing channels.
func (s *Service) StopDetection() {
	s.fusion.Stop()

	s.mu.Lock()
	s.detectionActive = false
	s.mu.Unlock()
}

// DetectionActive reports whether detection is currently running.
func (s *Service) DetectionActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detectionActive
}

// CurrentEmotion returns the fused state, or the neutral default when
// detection is not running.
func (s *Service) CurrentEmotion() domain.FusedState {
	if !s.DetectionActive() {
		return domain.FusedState{Label: domain.Focused, Confidence: 0.5}
	}
	return s.fusion.Current()
}

// DetailedEmotion returns the full fusion pipeline snapshot.
func (s *Service) DetailedEmotion() domain.DetailedState {
	if !s.DetectionActive() {
		return domain.DetailedState{
			Fused: domain.FusedState{Label: domain.Focused, Confidence: 0.5},
		}
	}
	return s.fusion.Detailed()
}

// RequestIntervention asks the intervention engine for a response to the
// current fused emotion. Non-silent interventions are persisted against the
// current study session. A nil intervention means the engine chose to stay
// quiet (cooldown or unknown emotion).
func (s *Service) RequestIntervention(ctx context.Context, ictx domain.InterventionContext) (*domain.Intervention, error) {
	state := s.CurrentEmotion()

	iv := s.advisor.GetIntervention(state.Label, ictx)
	if iv == nil || iv.Silent {
		return iv, nil
	}

	s.mu.Lock()
	var sessionID *uuid.UUID
	if s.currentSession != nil {
		id := s.currentSession.ID
		sessionID = &id
	}
	s.mu.Unlock()

	message := ""
	if iv.Message != nil {
		message = *iv.Message
	}
	rec := &domain.InterventionRecord{
		SessionID: sessionID,
		Emotion:   iv.Emotion,
		Type:      iv.Type,
		Message:   message,
		CreatedAt: iv.Timestamp,
	}
	if err := s.interventions.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist intervention: %w", err)
	}

	return iv, nil
}

// SessionStats returns the intervention engine's per-session counters.
func (s *Service) SessionStats() domain.SessionStats {
	return s.advisor.SessionStats()
}

// SubmitFeedback stores an explicit user rating.
func (s *Service) SubmitFeedback(ctx context.Context, userID uuid.UUID, rating int, text, kind string) (*domain.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.ValidationError("rating must be between 1 and 5").
			WithContext("rating", rating)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if kind == "" {
		kind = "overall"
	}

	s.mu.Lock()
	var sessionID *uuid.UUID
	if s.currentSession != nil {
		id := s.currentSession.ID
		sessionID = &id
	}
	s.mu.Unlock()

	fb := &domain.Feedback{
		UserID:    userID,
		SessionID: sessionID,
		Rating:    rating,
		Text:      text,
		Kind:      kind,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.feedback.Insert(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// EmotionHistory lists a user's most recent persisted emotion logs.
func (s *Service) EmotionHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.EmotionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.emotionLogs.ListByUser(ctx, userID, limit)
}

// CurrentSession returns the in-memory active session, or nil.
func (s *Service) CurrentSession() *domain.StudySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSession
}
