package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/studypulse/internal/domain"
	apperrors "github.com/pscheid92/studypulse/internal/errors"
)

func (s *Server) handleIntervention(c echo.Context) error {
	ictx := domain.InterventionContext{Topic: c.QueryParam("topic")}

	if raw := c.QueryParam("time_studying"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			return apperrors.ValidationError("invalid time_studying").WithContext("time_studying", raw)
		}
		ictx.TimeStudyingMinutes = minutes
	}

	iv, err := s.app.RequestIntervention(c.Request().Context(), ictx)
	if err != nil {
		return err
	}

	if iv == nil {
		if err := c.JSON(http.StatusOK, map[string]any{"intervention": nil}); err != nil {
			return fmt.Errorf("failed to send JSON response: %w", err)
		}
		return nil
	}

	if err := c.JSON(http.StatusOK, map[string]any{"intervention": iv}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSessionStats(c echo.Context) error {
	if err := c.JSON(http.StatusOK, s.app.SessionStats()); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type feedbackRequest struct {
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Kind   string `json:"kind"`
}

func (s *Server) handleSubmitFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid user ID").WithContext("user_id", req.UserID)
	}

	fb, err := s.app.SubmitFeedback(c.Request().Context(), userID, req.Rating, req.Text, req.Kind)
	if err != nil {
		return err
	}

	resp := map[string]any{
		"id":     fb.ID.String(),
		"rating": fb.Rating,
		"kind":   fb.Kind,
	}
	if err := c.JSON(http.StatusCreated, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
