// Package config loads and validates environment configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	FacialDetectorURL  string        `env:"FACIAL_DETECTOR_URL" default:"http://localhost:5004"`
	VoiceDetectorURL   string        `env:"VOICE_DETECTOR_URL" default:"http://localhost:5005"`
	VoiceChunkDuration time.Duration `env:"VOICE_CHUNK_DURATION" default:"2s"`

	RecorderInterval        time.Duration `env:"RECORDER_INTERVAL" default:"5s"`
	MaxWebSocketConnections int           `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
	MaxConnectionsPerIP     int           `env:"MAX_CONNECTIONS_PER_IP" default:"10"`
	ConnectionRatePerSec    float64       `env:"CONNECTION_RATE_PER_SEC" default:"10"`
	ConnectionBurst         int           `env:"CONNECTION_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.VoiceChunkDuration <= 0 {
		return fmt.Errorf("VOICE_CHUNK_DURATION must be positive")
	}
	if cfg.RecorderInterval <= 0 {
		return fmt.Errorf("RECORDER_INTERVAL must be positive")
	}
	if cfg.MaxWebSocketConnections <= 0 {
		return fmt.Errorf("MAX_WEBSOCKET_CONNECTIONS must be positive")
	}
	if cfg.MaxConnectionsPerIP <= 0 {
		return fmt.Errorf("MAX_CONNECTIONS_PER_IP must be positive")
	}
	if cfg.ConnectionRatePerSec <= 0 {
		return fmt.Errorf("CONNECTION_RATE_PER_SEC must be positive")
	}
	return nil
}
