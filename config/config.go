package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"postgresql://postgres@localhost:5432/capacity"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"your-super-secret-key-change-in-production"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	ServerPort    string        `env:"SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"ENV" envDefault:"production"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	// Capacity tunables. These are seeded into the settings table on first
	// start and can be changed at runtime by an admin.
	PaceFactor         float64 `env:"PACE_FACTOR" envDefault:"0.8"`
	WorkingHoursPerDay float64 `env:"WORKING_HOURS_PER_DAY" envDefault:"8"`
	WorkingDaysPerWeek int     `env:"WORKING_DAYS_PER_WEEK" envDefault:"5"`

	// Optional SMTP integration. Notifications are disabled when Host is empty.
	SMTP SMTPConfig `envPrefix:"SMTP_"`

	// Optional ticket-tracker integration. Polling is disabled when BaseURL
	// is empty.
	Tracker TrackerConfig `envPrefix:"TRACKER_"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type TrackerConfig struct {
	BaseURL      string        `env:"BASE_URL"`
	Token        string        `env:"TOKEN"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PaceFactor <= 0 || cfg.PaceFactor > 1 {
		return nil, fmt.Errorf("PACE_FACTOR must be in (0,1], got %v", cfg.PaceFactor)
	}
	if cfg.WorkingDaysPerWeek < 1 || cfg.WorkingDaysPerWeek > 7 {
		return nil, fmt.Errorf("WORKING_DAYS_PER_WEEK must be in [1,7], got %d", cfg.WorkingDaysPerWeek)
	}
	return &cfg, nil
}
