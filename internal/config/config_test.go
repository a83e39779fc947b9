package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medvault_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Errorf("Env = %q, want development default", cfg.Env)
	}
	if cfg.S3Bucket != "medical-photos" {
		t.Errorf("S3Bucket = %q, want medical-photos", cfg.S3Bucket)
	}
	if cfg.SignedURLTTL() != time.Hour {
		t.Errorf("SignedURLTTL = %v, want 1h", cfg.SignedURLTTL())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{Env: "production", DatabaseURL: "postgres://db/x"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected production config without session secret to fail")
	}

	cfg.SessionSecret = "s3cret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected production config without identity provider to fail")
	}

	cfg.IdentityBaseURL = "https://identity.example/auth/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateDevIsPermissive(t *testing.T) {
	cfg := &Config{Env: "development", DatabaseURL: "postgres://db/x"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejectsNegativeTTL(t *testing.T) {
	cfg := &Config{Env: "development", SignedURLTTLSeconds: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative TTL to be rejected")
	}
}
