package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Users and sessions
	s.echo.POST("/api/users", s.handleCreateUser)
	s.echo.GET("/api/users/:id", s.handleGetUser)
	s.echo.POST("/api/sessions", s.handleStartSession)
	s.echo.POST("/api/sessions/:id/end", s.handleEndSession)

	// Detection lifecycle and emotion state
	s.echo.POST("/api/detection/start", s.handleStartDetection)
	s.echo.POST("/api/detection/stop", s.handleStopDetection)
	s.echo.GET("/api/emotion", s.handleCurrentEmotion)
	s.echo.GET("/api/emotion/detailed", s.handleDetailedEmotion)

	// Interventions, stats, feedback, history
	s.echo.GET("/api/intervention", s.handleIntervention)
	s.echo.GET("/api/stats", s.handleSessionStats)
	s.echo.POST("/api/feedback", s.handleSubmitFeedback)
	s.echo.GET("/api/history/:user_id", s.handleEmotionHistory)

	// Live emotion stream
	s.echo.GET("/ws/emotion", s.handleWebSocket)
}
