package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the warmth service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	DatabaseURL string
	SQLitePath  string

	SweepInterval      time.Duration
	StaleAfter         time.Duration
	AlertCheckInterval time.Duration

	BulkRecomputeLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("WARMTHD_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("WARMTHD_METRICS_NAMESPACE", "warmthd"),
		AllowAnyOrigin:     false,
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		SQLitePath:         trimmedEnv("WARMTHD_SQLITE_PATH"),
		ShutdownTimeout:    15 * time.Second,
		SweepInterval:      10 * time.Minute,
		StaleAfter:         24 * time.Hour,
		AlertCheckInterval: time.Hour,
		BulkRecomputeLimit: 200,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("WARMTHD_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SweepInterval, err = durationFromEnv("WARMTHD_SWEEP_INTERVAL", cfg.SweepInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.StaleAfter, err = durationFromEnv("WARMTHD_STALE_AFTER", cfg.StaleAfter)
	if err != nil {
		return Config{}, err
	}
	cfg.AlertCheckInterval, err = durationFromEnv("WARMTHD_ALERT_CHECK_INTERVAL", cfg.AlertCheckInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.BulkRecomputeLimit, err = intFromEnv("WARMTHD_BULK_LIMIT", cfg.BulkRecomputeLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("WARMTHD_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SweepInterval < time.Minute {
		return Config{}, fmt.Errorf("WARMTHD_SWEEP_INTERVAL must be at least 1m")
	}
	if cfg.StaleAfter < cfg.SweepInterval {
		return Config{}, fmt.Errorf("WARMTHD_STALE_AFTER must be at least the sweep interval")
	}
	if cfg.AlertCheckInterval < time.Minute {
		return Config{}, fmt.Errorf("WARMTHD_ALERT_CHECK_INTERVAL must be at least 1m")
	}
	if cfg.BulkRecomputeLimit <= 0 {
		return Config{}, fmt.Errorf("WARMTHD_BULK_LIMIT must be positive")
	}
	if cfg.DatabaseURL != "" && cfg.SQLitePath != "" {
		return Config{}, fmt.Errorf("DATABASE_URL and WARMTHD_SQLITE_PATH are mutually exclusive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
