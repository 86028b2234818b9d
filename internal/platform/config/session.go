package config

import (
	"fmt"
	"os"
	"time"
)

// SessionConfig configures the HS256 session tokens issued at login.
type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration

	ClockSkew time.Duration
}

// LoadSessionConfigFromEnv requires SESSION_SECRET; the rest have defaults.
func LoadSessionConfigFromEnv() (SessionConfig, error) {
	return loadSessionConfig(os.Getenv)
}

func loadSessionConfig(getenv func(string) string) (SessionConfig, error) {
	secret := getenv("SESSION_SECRET")
	if secret == "" {
		return SessionConfig{}, fmt.Errorf("missing required env var: SESSION_SECRET")
	}
	if len(secret) < 16 {
		return SessionConfig{}, fmt.Errorf("SESSION_SECRET must be at least 16 bytes")
	}

	cfg := SessionConfig{
		Secret:    secret,
		Issuer:    "clubhouse-api",
		TTL:       7 * 24 * time.Hour,
		ClockSkew: 30 * time.Second,
	}
	if v := getenv("SESSION_ISSUER"); v != "" {
		cfg.Issuer = v
	}
	if v := getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL must be a duration (e.g. 168h): %w", err)
		}
		if d <= 0 {
			return SessionConfig{}, fmt.Errorf("SESSION_TTL must be positive")
		}
		cfg.TTL = d
	}
	if v := getenv("SESSION_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("SESSION_CLOCK_SKEW must be a duration (e.g. 30s): %w", err)
		}
		cfg.ClockSkew = d
	}
	return cfg, nil
}
