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

type channelReading struct {
	Emotion    domain.EmotionLabel `json:"emotion"`
	Confidence float64             `json:"confidence"`
}

type detailedEmotionResponse struct {
	Facial  *channelReading     `json:"facial"`
	Voice   *channelReading     `json:"voice"`
	Fused   domain.FusedState   `json:"fused"`
	History []domain.FusedState `json:"history"`
}

func toChannelReading(sample domain.EmotionSample) *channelReading {
	if !sample.Present {
		return nil
	}
	return &channelReading{Emotion: sample.Label, Confidence: sample.Confidence}
}

func (s *Server) handleStartDetection(c echo.Context) error {
	if err := s.app.StartDetection(); err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, map[string]string{"status": "detection started"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleStopDetection(c echo.Context) error {
	s.app.StopDetection()
	if err := c.JSON(http.StatusOK, map[string]string{"status": "detection stopped"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCurrentEmotion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, s.app.CurrentEmotion()); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDetailedEmotion(c echo.Context) error {
	detailed := s.app.DetailedEmotion()

	resp := detailedEmotionResponse{
		Facial:  toChannelReading(detailed.Facial),
		Voice:   toChannelReading(detailed.Voice),
		Fused:   detailed.Fused,
		History: detailed.History,
	}
	if resp.History == nil {
		resp.History = []domain.FusedState{}
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type emotionLogResponse struct {
	ID         string              `json:"id"`
	SessionID  *string             `json:"session_id"`
	Emotion    domain.EmotionLabel `json:"emotion"`
	Confidence float64             `json:"confidence"`
	Source     string              `json:"source"`
	Facial     *channelReading     `json:"facial"`
	Voice      *channelReading     `json:"voice"`
	Timestamp  string              `json:"timestamp"`
}

func (s *Server) handleEmotionHistory(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return apperrors.ValidationError("invalid user ID").WithContext("user_id", c.Param("user_id"))
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("invalid limit").WithContext("limit", raw)
		}
	}

	logs, err := s.app.EmotionHistory(c.Request().Context(), userID, limit)
	if err != nil {
		return err
	}

	resp := make([]emotionLogResponse, 0, len(logs))
	for _, log := range logs {
		entry := emotionLogResponse{
			ID:         log.ID.String(),
			Emotion:    log.Emotion,
			Confidence: log.Confidence,
			Source:     log.Source,
			Timestamp:  log.Timestamp.Format(timeFormat),
		}
		if log.SessionID != nil {
			id := log.SessionID.String()
			entry.SessionID = &id
		}
		if log.FacialEmotion != nil && log.FacialConfidence != nil {
			entry.Facial = &channelReading{Emotion: *log.FacialEmotion, Confidence: *log.FacialConfidence}
		}
		if log.VoiceEmotion != nil && log.VoiceConfidence != nil {
			entry.Voice = &channelReading{Emotion: *log.VoiceEmotion, Confidence: *log.VoiceConfidence}
		}
		resp = append(resp, entry)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
