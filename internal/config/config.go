package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/nfrund/eventnotify/internal/pubsub"
)

// Config holds all configuration for the application.
type Config struct {
	LogFormat     string               `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel      string               `env:"LOG_LEVEL" envDefault:"info"`
	ChannelPrefix string               `env:"NOTIFY_CHANNEL_PREFIX" envDefault:"notification.registration"`
	Tracing       pubsub.TracingConfig `envPrefix:"NOTIFY_TRACING_"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return Parse()
}

// Parse builds the configuration from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return &cfg, nil
}
