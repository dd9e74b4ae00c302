package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	Environment string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string        `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DataDir     string        `env:"DATA_DIR" envDefault:"./data"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	MaxDays     int           `env:"GAME_MAX_DAYS" envDefault:"60"`
	GoalFans    int           `env:"GAME_GOAL_FANS" envDefault:"10000"`
	PlayerName  string        `env:"PLAYER_NAME" envDefault:"Mangaka"`

	LogLevel slog.Level
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	if cfg.MaxDays <= 0 {
		return nil, fmt.Errorf("GAME_MAX_DAYS must be positive, got %d", cfg.MaxDays)
	}
	if cfg.GoalFans <= 0 {
		return nil, fmt.Errorf("GAME_GOAL_FANS must be positive, got %d", cfg.GoalFans)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
