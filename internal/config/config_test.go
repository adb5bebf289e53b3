package config

import (
	"errors"
	"testing"
	"time"
)

func TestValidateProductionRequiresSecret(t *testing.T) {
	cfg := &Config{
		Env: "production",
		JWT: JWTConfig{Expiry: time.Hour},
	}

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestValidateStagingRequiresSecret(t *testing.T) {
	cfg := &Config{
		Env: "staging",
		JWT: JWTConfig{Expiry: time.Hour},
	}

	if err := cfg.Validate(); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestValidateDevelopmentFallsBackToDevSecret(t *testing.T) {
	cfg := &Config{
		Env: "development",
		JWT: JWTConfig{Expiry: time.Hour},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.JWT.Secret == "" {
		t.Fatal("expected a fallback secret outside production")
	}
	if !cfg.UsedDevSecret() {
		t.Error("UsedDevSecret should report the fallback")
	}
}

func TestValidateExplicitSecretKept(t *testing.T) {
	cfg := &Config{
		Env: "production",
		JWT: JWTConfig{Secret: "segredo-explicito", Expiry: time.Hour},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UsedDevSecret() {
		t.Error("explicit secret must not be reported as the dev fallback")
	}
}

func TestValidateRejectsNonPositiveExpiry(t *testing.T) {
	cfg := &Config{
		Env: "development",
		JWT: JWTConfig{Secret: "segredo", Expiry: 0},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive expiry")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_NAME", "JWT_EXPIRY_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Server.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Server.Port)
	}
	if cfg.Database.DBName != "escola" {
		t.Errorf("expected default database escola, got %s", cfg.Database.DBName)
	}
	if cfg.JWT.Expiry != 1440*time.Minute {
		t.Errorf("expected default expiry of 1440 minutes, got %v", cfg.JWT.Expiry)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: "5432", User: "postgres",
		Password: "senha", DBName: "escola", SSLMode: "disable",
	}

	want := "host=db port=5432 user=postgres password=senha dbname=escola sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
