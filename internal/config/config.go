package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	CORSOrigin  string
	LogLevel    string

	// AI suggestion endpoint; suggestions are disabled when the key is empty.
	AIAPIKey string
	AIAPIURL string

	// DigestTime is the HH:MM local time of the daily digest job.
	DigestTime string

	// CompleteAttempts bounds retries of the completion transaction.
	CompleteAttempts int
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		Port:             strings.TrimSpace(os.Getenv("PORT")),
		CORSOrigin:       strings.TrimSpace(os.Getenv("CORS_ORIGIN")),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		AIAPIKey:         strings.TrimSpace(os.Getenv("AI_API_KEY")),
		AIAPIURL:         strings.TrimSpace(os.Getenv("AI_API_URL")),
		DigestTime:       strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		CompleteAttempts: parsePositiveInt(os.Getenv("COMPLETE_ATTEMPTS")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DigestTime == "" {
		cfg.DigestTime = "07:00"
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func parsePositiveInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
