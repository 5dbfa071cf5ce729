package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DATA_MODE", "")
	t.Setenv("CLINIC_TIMEZONE", "")
	t.Setenv("MIN_APPOINTMENT_MINUTES", "")
	t.Setenv("SEARCH_DEBOUNCE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DataMode != DataModeLive || cfg.StaticMode() {
		t.Fatalf("expected live data mode by default, got %s", cfg.DataMode)
	}
	if cfg.UpstreamBaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected upstream default %s", cfg.UpstreamBaseURL)
	}
	if cfg.ClinicTimezone != "America/Lima" {
		t.Fatalf("expected Lima timezone, got %s", cfg.ClinicTimezone)
	}
	if cfg.MinAppointmentMinutes != 30 {
		t.Fatalf("expected 30 minute minimum, got %d", cfg.MinAppointmentMinutes)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %s", cfg.SearchDebounce)
	}
	if len(cfg.CORSAllowedOrigins) != 1 {
		t.Fatalf("expected one default origin, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATA_MODE", " STATIC ")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("MIN_APPOINTMENT_MINUTES", "45")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if !cfg.StaticMode() {
		t.Fatalf("expected static mode, got %q", cfg.DataMode)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.UpstreamTimeout)
	}
	if cfg.MinAppointmentMinutes != 45 {
		t.Fatalf("expected minimum override, got %d", cfg.MinAppointmentMinutes)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps override, got %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MIN_APPOINTMENT_MINUTES", "abc")
	t.Setenv("SEARCH_DEBOUNCE", "soon")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.MinAppointmentMinutes != 30 {
		t.Fatalf("expected fallback minimum, got %d", cfg.MinAppointmentMinutes)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("expected fallback debounce, got %s", cfg.SearchDebounce)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected redis tls fallback false")
	}
}
