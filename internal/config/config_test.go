package config

import (
	"testing"
	"time"
)

func TestEnvHelpersUseDefaults(t *testing.T) {
	if got := getEnv("TRACKIQ_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := getEnvInt("TRACKIQ_TEST_UNSET", 42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := getEnvFloat("TRACKIQ_TEST_UNSET", 0.5); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
	if got := getEnvDuration("TRACKIQ_TEST_UNSET", time.Minute); got != time.Minute {
		t.Fatalf("expected 1m, got %v", got)
	}
}

func TestEnvHelpersParseOverrides(t *testing.T) {
	t.Setenv("TRACKIQ_TEST_INT", "7")
	t.Setenv("TRACKIQ_TEST_FLOAT", "1.25")
	t.Setenv("TRACKIQ_TEST_DUR", "90s")

	if got := getEnvInt("TRACKIQ_TEST_INT", 0); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := getEnvFloat("TRACKIQ_TEST_FLOAT", 0); got != 1.25 {
		t.Fatalf("expected 1.25, got %f", got)
	}
	if got := getEnvDuration("TRACKIQ_TEST_DUR", 0); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("TRACKIQ_TEST_INT", "not-a-number")
	t.Setenv("TRACKIQ_TEST_DUR", "soon")

	if got := getEnvInt("TRACKIQ_TEST_INT", 42); got != 42 {
		t.Fatalf("garbage int should fall back, got %d", got)
	}
	if got := getEnvDuration("TRACKIQ_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("garbage duration should fall back, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.WindowStartHour != 6 || cfg.WindowEndHour != 24 {
		t.Fatalf("unexpected tracking window %d-%d", cfg.WindowStartHour, cfg.WindowEndHour)
	}
	if cfg.MovingInterval != 10*time.Minute || cfg.StationaryInterval != 30*time.Minute {
		t.Fatalf("unexpected cadence %v/%v", cfg.MovingInterval, cfg.StationaryInterval)
	}
	if cfg.MovingSpeedMPS != 0.5 {
		t.Fatalf("unexpected moving speed threshold %f", cfg.MovingSpeedMPS)
	}
	if cfg.LoginURL == "" || cfg.UploadURL == "" || cfg.BatchUploadURL == "" {
		t.Fatal("backend endpoints must have defaults")
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("default driver must be sqlite, got %q", cfg.DBDriver)
	}
}
