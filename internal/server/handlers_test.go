package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/studypulse/internal/config"
	"github.com/pscheid92/studypulse/internal/domain"
)

// mockApp implements AppService with configurable results.
type mockApp struct {
	mu sync.Mutex

	user    *domain.User
	userErr error

	session    *domain.StudySession
	sessionErr error
	duration   time.Duration

	detectionErr    error
	detectionActive bool

	current  domain.FusedState
	detailed domain.DetailedState

	intervention    *domain.Intervention
	interventionErr error
	lastIctx        domain.InterventionContext

	stats domain.SessionStats

	feedback    *domain.Feedback
	feedbackErr error

	history    []domain.EmotionLog
	historyErr error
}

func (m *mockApp) CreateUser(_ context.Context, username string) (*domain.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockApp) GetUser(_ context.Context, _ uuid.UUID) (*domain.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockApp) StartSession(_ context.Context, _ uuid.UUID, _ string) (*domain.StudySession, error) {
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	return m.session, nil
}

func (m *mockApp) EndSession(_ context.Context, _ uuid.UUID) (*domain.StudySession, time.Duration, error) {
	if m.sessionErr != nil {
		return nil, 0, m.sessionErr
	}
	return m.session, m.duration, nil
}

func (m *mockApp) StartDetection() error {
	if m.detectionErr != nil {
		return m.detectionErr
	}
	m.mu.Lock()
	m.detectionActive = true
	m.mu.Unlock()
	return nil
}

func (m *mockApp) StopDetection() {
	m.mu.Lock()
	m.detectionActive = false
	m.mu.Unlock()
}

func (m *mockApp) DetectionActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detectionActive
}

func (m *mockApp) CurrentEmotion() domain.FusedState {
	return m.current
}

func (m *mockApp) DetailedEmotion() domain.DetailedState {
	return m.detailed
}

func (m *mockApp) RequestIntervention(_ context.Context, ictx domain.InterventionContext) (*domain.Intervention, error) {
	m.mu.Lock()
	m.lastIctx = ictx
	m.mu.Unlock()
	if m.interventionErr != nil {
		return nil, m.interventionErr
	}
	return m.intervention, nil
}

func (m *mockApp) SessionStats() domain.SessionStats {
	return m.stats
}

func (m *mockApp) SubmitFeedback(_ context.Context, _ uuid.UUID, _ int, _, _ string) (*domain.Feedback, error) {
	if m.feedbackErr != nil {
		return nil, m.feedbackErr
	}
	return m.feedback, nil
}

func (m *mockApp) EmotionHistory(_ context.Context, _ uuid.UUID, _ int) ([]domain.EmotionLog, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

type mockBroadcaster struct {
	mu          sync.Mutex
	registered  int
	registerErr error
}

func (m *mockBroadcaster) Register(conn *gorillaws.Conn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return m.registerErr
	}
	m.registered++
	return nil
}

func (m *mockBroadcaster) Unregister(conn *gorillaws.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered--
}

type mockDB struct {
	pingErr error
}

func (m *mockDB) Ping(_ context.Context) error {
	return m.pingErr
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		Port:                    "0",
		MaxWebSocketConnections: 10,
		MaxConnectionsPerIP:     5,
		ConnectionRatePerSec:    1000,
		ConnectionBurst:         1000,
	}
}

func newTestServer(t *testing.T, app *mockApp) (*Server, *mockBroadcaster, *mockDB) {
	t.Helper()

	broadcaster := &mockBroadcaster{}
	db := &mockDB{}
	srv := NewServer(testConfig(), app, broadcaster, db)
	return srv, broadcaster, db
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateUser(t *testing.T) {
	app := &mockApp{user: &domain.User{
		ID:        uuid.New(),
		Username:  "alice",
		CreatedAt: time.Now().UTC(),
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/users", `{"username":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, app.user.ID.String(), resp.ID)
}

func TestHandleCreateUserConflict(t *testing.T) {
	app := &mockApp{userErr: domain.ErrUserExists}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/users", `{"username":"alice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleGetUserInvalidID(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/api/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetUserNotFound(t *testing.T) {
	app := &mockApp{userErr: domain.ErrUserNotFound}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/users/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStartSession(t *testing.T) {
	userID := uuid.New()
	app := &mockApp{session: &domain.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		Topic:     "math",
		StartedAt: time.Now().UTC(),
		Active:    true,
	}}
	srv, _, _ := newTestServer(t, app)

	body := fmt.Sprintf(`{"user_id":%q,"topic":"math"}`, userID)
	rec := doRequest(srv, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "math", resp.Topic)
	assert.True(t, resp.Active)
	assert.Nil(t, resp.EndedAt)
}

func TestHandleStartSessionInvalidUserID(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodPost, "/api/sessions", `{"user_id":"oops"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEndSession(t *testing.T) {
	ended := time.Now().UTC()
	started := ended.Add(-30 * time.Minute)
	app := &mockApp{
		session: &domain.StudySession{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			StartedAt: started,
			EndedAt:   &ended,
			Active:    false,
		},
		duration: 30 * time.Minute,
	}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/sessions/"+app.session.ID.String()+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Session         sessionResponse `json:"session"`
		DurationSeconds int             `json:"duration_seconds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1800, resp.DurationSeconds)
	assert.False(t, resp.Session.Active)
	require.NotNil(t, resp.Session.EndedAt)
}

func TestHandleEndSessionNotFound(t *testing.T) {
	app := &mockApp{sessionErr: domain.ErrSessionNotFound}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/sessions/"+uuid.NewString()+"/end", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDetectionLifecycle(t *testing.T) {
	app := &mockApp{}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodPost, "/api/detection/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, app.DetectionActive())

	rec = doRequest(srv, http.MethodPost, "/api/detection/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, app.DetectionActive())
}

func TestHandleCurrentEmotion(t *testing.T) {
	app := &mockApp{current: domain.FusedState{Label: domain.Curious, Confidence: 0.7}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/emotion", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.FusedState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.Curious, resp.Label)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
}

func TestHandleDetailedEmotion(t *testing.T) {
	app := &mockApp{detailed: domain.DetailedState{
		Facial: domain.EmotionSample{Label: domain.Confused, Confidence: 0.8, Present: true},
		Voice:  domain.EmotionSample{},
		Fused:  domain.FusedState{Label: domain.Confused, Confidence: 0.64},
		History: []domain.FusedState{
			{Label: domain.Confused, Confidence: 0.64},
		},
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/emotion/detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Facial  *channelReading     `json:"facial"`
		Voice   *channelReading     `json:"voice"`
		Fused   domain.FusedState   `json:"fused"`
		History []domain.FusedState `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Facial)
	assert.Equal(t, domain.Confused, resp.Facial.Emotion)
	assert.Nil(t, resp.Voice)
	assert.Len(t, resp.History, 1)
}

func TestHandleDetailedEmotionEmptyHistory(t *testing.T) {
	app := &mockApp{detailed: domain.DetailedState{
		Fused: domain.FusedState{Label: domain.Focused, Confidence: 0.5},
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/emotion/detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"history":[]`)
}

func TestHandleInterventionPassesContext(t *testing.T) {
	msg := "Try a different angle."
	app := &mockApp{intervention: &domain.Intervention{
		Emotion:  domain.Confused,
		Type:     domain.TypeHint,
		Priority: domain.PriorityMedium,
		Message:  &msg,
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/intervention?topic=calculus&time_studying=50", "")
	require.Equal(t, http.StatusOK, rec.Code)

	app.mu.Lock()
	ictx := app.lastIctx
	app.mu.Unlock()
	assert.Equal(t, "calculus", ictx.Topic)
	assert.Equal(t, 50, ictx.TimeStudyingMinutes)

	assert.Contains(t, rec.Body.String(), "Try a different angle.")
}

func TestHandleInterventionNilResult(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/api/intervention", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"intervention":null`)
}

func TestHandleInterventionInvalidTimeStudying(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/api/intervention?time_studying=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/intervention?time_studying=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSessionStats(t *testing.T) {
	app := &mockApp{stats: domain.SessionStats{
		TotalInterventions: 3,
		EmotionDistribution: map[domain.EmotionLabel]int{
			domain.Confused: 2,
			domain.Bored:    1,
		},
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.SessionStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalInterventions)
	assert.Equal(t, 2, resp.EmotionDistribution[domain.Confused])
}

func TestHandleSubmitFeedback(t *testing.T) {
	userID := uuid.New()
	app := &mockApp{feedback: &domain.Feedback{
		ID:     uuid.New(),
		UserID: userID,
		Rating: 4,
		Kind:   "overall",
	}}
	srv, _, _ := newTestServer(t, app)

	body := fmt.Sprintf(`{"user_id":%q,"rating":4,"kind":"overall"}`, userID)
	rec := doRequest(srv, http.MethodPost, "/api/feedback", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":4`)
}

func TestHandleSubmitFeedbackInvalidUser(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodPost, "/api/feedback", `{"user_id":"nope","rating":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEmotionHistory(t *testing.T) {
	userID := uuid.New()
	facial := domain.Confused
	facialConf := 0.8
	app := &mockApp{history: []domain.EmotionLog{
		{
			ID:               uuid.New(),
			UserID:           userID,
			Emotion:          domain.Confused,
			Confidence:       0.75,
			Source:           "fused",
			FacialEmotion:    &facial,
			FacialConfidence: &facialConf,
			Timestamp:        time.Now().UTC(),
		},
	}}
	srv, _, _ := newTestServer(t, app)

	rec := doRequest(srv, http.MethodGet, "/api/history/"+userID.String()+"?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []emotionLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, domain.Confused, resp[0].Emotion)
	require.NotNil(t, resp[0].Facial)
	assert.Nil(t, resp[0].Voice)
}

func TestHandleEmotionHistoryInvalidLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/api/history/"+uuid.NewString()+"?limit=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLiveness(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	srv, _, db := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	db.pingErr = fmt.Errorf("connection refused")
	rec = doRequest(srv, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"postgres"`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockApp{})

	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
