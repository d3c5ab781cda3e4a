// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"resume-builder/internal/adapter/storage"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	ChromePath        string
	TemplateDefault   string
	ExportTimeout     time.Duration
	ImageFetchTimeout time.Duration
	R2                storage.R2Config
	PracticeFixtures  bool
	LogLevel          slog.Level
}

// UploadsEnabled reports whether object storage is configured.
func (c Config) UploadsEnabled() bool {
	return c.R2.AccountID != "" && c.R2.Bucket != "" && c.R2.AccessKey != "" && c.R2.SecretKey != ""
}

// Load reads a .env file when present and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:            get("PORT", "3000"),
		DatabaseURL:     get("DATABASE_URL", ""),
		ChromePath:      get("CHROME_PATH", ""),
		TemplateDefault: get("TEMPLATE_DEFAULT", "modern"),
		R2: storage.R2Config{
			AccountID:     get("R2_ACCOUNT_ID", ""),
			Bucket:        get("R2_BUCKET", ""),
			AccessKey:     get("R2_ACCESS_KEY", ""),
			SecretKey:     get("R2_SECRET_KEY", ""),
			PublicBaseURL: get("R2_PUBLIC_BASE_URL", ""),
		},
	}

	var err error
	if cfg.ExportTimeout, err = time.ParseDuration(get("EXPORT_TIMEOUT", "60s")); err != nil {
		return cfg, fmt.Errorf("EXPORT_TIMEOUT: %w", err)
	}
	if cfg.ImageFetchTimeout, err = time.ParseDuration(get("IMAGE_FETCH_TIMEOUT", "10s")); err != nil {
		return cfg, fmt.Errorf("IMAGE_FETCH_TIMEOUT: %w", err)
	}
	if cfg.PracticeFixtures, err = strconv.ParseBool(get("PRACTICE_FIXTURES", "false")); err != nil {
		return cfg, fmt.Errorf("PRACTICE_FIXTURES: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.UploadsEnabled() && cfg.R2.PublicBaseURL == "" {
		return cfg, fmt.Errorf("R2_PUBLIC_BASE_URL is required when uploads are configured")
	}
	return cfg, nil
}

// NewLogger returns a JSON logger at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
