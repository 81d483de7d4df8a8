package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/studypulse/internal/domain"
	apperrors "github.com/pscheid92/studypulse/internal/errors"
)

// timeFormat is RFC 3339 with millisecond precision, used for all API timestamps.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

type startSessionRequest struct {
	UserID string `json:"user_id"`
	Topic  string `json:"topic"`
}

type sessionResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Topic     string  `json:"topic"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at"`
	Active    bool    `json:"active"`
}

func toSessionResponse(session *domain.StudySession) sessionResponse {
	resp := sessionResponse{
		ID:        session.ID.String(),
		UserID:    session.UserID.String(),
		Topic:     session.Topic,
		StartedAt: session.StartedAt.Format(timeFormat),
		Active:    session.Active,
	}
	if session.EndedAt != nil {
		ended := session.EndedAt.Format(timeFormat)
		resp.EndedAt = &ended
	}
	return resp
}

func (s *Server) handleStartSession(c echo.Context) error {
	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid user ID").WithContext("user_id", req.UserID)
	}

	session, err := s.app.StartSession(c.Request().Context(), userID, req.Topic)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, toSessionResponse(session)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleEndSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid session ID").WithContext("id", c.Param("id"))
	}

	session, duration, err := s.app.EndSession(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}

	resp := map[string]any{
		"session":          toSessionResponse(session),
		"duration_seconds": int(duration / time.Second),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
