package config

import (
	"testing"
	"time"
)

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"WARMTHD_BIND_ADDR",
		"WARMTHD_METRICS_NAMESPACE",
		"WARMTHD_SHUTDOWN_TIMEOUT",
		"WARMTHD_SWEEP_INTERVAL",
		"WARMTHD_STALE_AFTER",
		"WARMTHD_ALERT_CHECK_INTERVAL",
		"WARMTHD_BULK_LIMIT",
		"WARMTHD_ALLOW_ANY_ORIGIN",
		"WARMTHD_SQLITE_PATH",
		"DATABASE_URL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.MetricsNamespace != "warmthd" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "warmthd")
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Fatalf("SweepInterval = %v, want 10m", cfg.SweepInterval)
	}
	if cfg.StaleAfter != 24*time.Hour {
		t.Fatalf("StaleAfter = %v, want 24h", cfg.StaleAfter)
	}
	if cfg.BulkRecomputeLimit != 200 {
		t.Fatalf("BulkRecomputeLimit = %d, want 200", cfg.BulkRecomputeLimit)
	}
	if cfg.DatabaseURL != "" || cfg.SQLitePath != "" {
		t.Fatalf("store settings should default empty, got %q / %q", cfg.DatabaseURL, cfg.SQLitePath)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("WARMTHD_BIND_ADDR", ":9191")
	t.Setenv("WARMTHD_SWEEP_INTERVAL", "5m")
	t.Setenv("WARMTHD_STALE_AFTER", "6h")
	t.Setenv("WARMTHD_BULK_LIMIT", "50")
	t.Setenv("WARMTHD_ALLOW_ANY_ORIGIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9191" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9191")
	}
	if cfg.SweepInterval != 5*time.Minute || cfg.StaleAfter != 6*time.Hour {
		t.Fatalf("sweep settings = %v / %v", cfg.SweepInterval, cfg.StaleAfter)
	}
	if cfg.BulkRecomputeLimit != 50 {
		t.Fatalf("BulkRecomputeLimit = %d, want 50", cfg.BulkRecomputeLimit)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("WARMTHD_SWEEP_INTERVAL", "10s")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted sub-minute sweep interval")
	}

	setCoreEnvEmpty(t)
	t.Setenv("WARMTHD_BULK_LIMIT", "nope")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted non-numeric bulk limit")
	}

	setCoreEnvEmpty(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/warmth")
	t.Setenv("WARMTHD_SQLITE_PATH", "/tmp/warmth.db")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted both postgres and sqlite backends")
	}
}
