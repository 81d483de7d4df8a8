package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/studypulse/internal/app"
	"github.com/pscheid92/studypulse/internal/config"
	"github.com/pscheid92/studypulse/internal/database"
	"github.com/pscheid92/studypulse/internal/fusion"
	"github.com/pscheid92/studypulse/internal/intervention"
	"github.com/pscheid92/studypulse/internal/logging"
	"github.com/pscheid92/studypulse/internal/sensor"
	"github.com/pscheid92/studypulse/internal/server"
	"github.com/pscheid92/studypulse/internal/websocket"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func runGracefulShutdown(srv *server.Server, appSvc *app.Service, broadcaster *websocket.Broadcaster, stopRecorder context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		broadcaster.Stop()
		appSvc.StopDetection()
		stopRecorder()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	facial := sensor.NewFacial(cfg.FacialDetectorURL, clock)
	voice := sensor.NewVoice(cfg.VoiceDetectorURL, cfg.VoiceChunkDuration, clock)
	fusionEngine := fusion.NewEngine(facial, voice, clock)

	advisor, err := intervention.NewEngine(clock)
	if err != nil {
		slog.Error("Failed to create intervention engine", "error", err)
		os.Exit(1)
	}

	userRepo := database.NewUserRepo(pool)
	sessionRepo := database.NewSessionRepo(pool)
	emotionLogRepo := database.NewEmotionLogRepo(pool)
	interventionRepo := database.NewInterventionRepo(pool)
	feedbackRepo := database.NewFeedbackRepo(pool)

	appSvc := app.NewService(userRepo, sessionRepo, emotionLogRepo, interventionRepo, feedbackRepo, fusionEngine, advisor, clock)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	recorder := app.NewRecorder(appSvc, emotionLogRepo, clock, cfg.RecorderInterval)
	go recorder.Run(recorderCtx)

	broadcaster := websocket.NewBroadcaster(fusionEngine, clock, cfg.MaxWebSocketConnections)

	srv := server.NewServer(cfg, appSvc, broadcaster, pool)

	done := runGracefulShutdown(srv, appSvc, broadcaster, stopRecorder)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
