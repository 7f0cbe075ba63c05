package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("BOOKING_ALLOW_REACTIVATION", "")
	t.Setenv("BOOKING_TIMEZONE", "")
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.GatewayTimeout != 15*time.Second {
		t.Fatalf("expected 15s gateway timeout, got %s", cfg.GatewayTimeout)
	}
	if !cfg.BookingAllowReactivation {
		t.Fatalf("expected reactivation allowed by default")
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC location by default, got %s", cfg.Location())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("GATEWAY_WEBHOOK_TOKEN", "whsec")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("BOOKING_ALLOW_REACTIVATION", "false")
	t.Setenv("BOOKING_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.GatewayWebhookToken != "whsec" {
		t.Fatalf("expected webhook token override, got %s", cfg.GatewayWebhookToken)
	}
	if cfg.GatewayTimeout != 3*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.GatewayTimeout)
	}
	if cfg.BookingAllowReactivation {
		t.Fatalf("expected reactivation disabled")
	}
	if cfg.Location().String() != "America/Sao_Paulo" {
		t.Fatalf("expected Sao Paulo location, got %s", cfg.Location())
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 40 {
		t.Fatalf("expected default burst on bad input, got %d", cfg.RateLimitBurst)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SLOT_LOCK_TTL=42s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("SLOT_LOCK_TTL", "")
	os.Unsetenv("SLOT_LOCK_TTL")

	cfg := Load()
	if cfg.SlotLockTTL != 42*time.Second {
		t.Fatalf("expected slot lock ttl from dotenv, got %s", cfg.SlotLockTTL)
	}
	os.Unsetenv("SLOT_LOCK_TTL")
}
