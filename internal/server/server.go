package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pscheid92/studypulse/internal/config"
	"github.com/pscheid92/studypulse/internal/correlation"
	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/pscheid92/studypulse/internal/errors"
)

// AppService is the application layer surface the handlers depend on.
type AppService interface {
	CreateUser(ctx context.Context, username string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	StartSession(ctx context.Context, userID uuid.UUID, topic string) (*domain.StudySession, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) (*domain.StudySession, time.Duration, error)
	StartDetection() error
	StopDetection()
	DetectionActive() bool
	CurrentEmotion() domain.FusedState
	DetailedEmotion() domain.DetailedState
	RequestIntervention(ctx context.Context, ictx domain.InterventionContext) (*domain.Intervention, error)
	SessionStats() domain.SessionStats
	SubmitFeedback(ctx context.Context, userID uuid.UUID, rating int, text, kind string) (*domain.Feedback, error)
	EmotionHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.EmotionLog, error)
}

// emotionBroadcaster is the WebSocket fan-out surface the handlers depend on.
type emotionBroadcaster interface {
	Register(conn *gorillaws.Conn) error
	Unregister(conn *gorillaws.Conn)
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	app         AppService
	broadcaster emotionBroadcaster
	db          postgresHealthChecker
	limits      *ConnectionLimits
	startTime   time.Time
}

func NewServer(cfg *config.Config, app AppService, broadcaster emotionBroadcaster, db postgresHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(errors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		app:         app,
		broadcaster: broadcaster,
		db:          db,
		limits: NewConnectionLimits(
			int64(cfg.MaxWebSocketConnections),
			cfg.MaxConnectionsPerIP,
			cfg.ConnectionRatePerSec,
			cfg.ConnectionBurst,
		),
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// correlationMiddleware tags each request context with a fresh correlation ID
// so a request's log lines can be grepped together.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
