package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/k5602/Vulnera-Frontend-sub001/config"
)

// InitLogger initializes the structured logger. Logs go to stderr so
// command output on stdout stays machine-readable.
func InitLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables, then overlays
// the named profile context. An empty contextName selects the profile
// document's current context, if any. Explicitly set environment variables
// always win over profile values.
func LoadConfig(contextName string) (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := applyProfile(&cfg, contextName); err != nil {
		return cfg, err
	}

	cfg.Sanitize()
	return cfg, nil
}

func applyProfile(cfg *config.AppConfig, contextName string) error {
	path, err := config.DefaultProfilesPath()
	if err != nil {
		// Platforms without a config directory only matter when the user
		// asked for a specific context.
		if contextName == "" {
			return nil
		}
		return fmt.Errorf("resolve profiles path: %w", err)
	}

	profiles, err := config.LoadProfiles(path)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	if err := profiles.Apply(cfg, contextName); err != nil {
		return fmt.Errorf("apply profile: %w", err)
	}

	return nil
}
