package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/gastos")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_dGVzdA==")
	t.Setenv("CLERK_JWT_PUBLIC_KEY", "-----BEGIN PUBLIC KEY-----\n...\n-----END PUBLIC KEY-----")
}

func TestNew_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ParseWorkers != 1 {
		t.Errorf("ParseWorkers = %d, want 1", cfg.ParseWorkers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestNew_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("CLERK_WEBHOOK_SECRET", "")

	_, err := New()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	for _, name := range []string{"GEMINI_API_KEY", "CLERK_WEBHOOK_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should name %s", err, name)
		}
	}
}

func TestNew_ParseWorkers(t *testing.T) {
	setRequired(t)

	t.Setenv("PARSE_WORKERS", "4")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if cfg.ParseWorkers != 4 {
		t.Errorf("ParseWorkers = %d, want 4", cfg.ParseWorkers)
	}

	t.Setenv("PARSE_WORKERS", "zero")
	if _, err := New(); err == nil {
		t.Error("expected error for non-numeric PARSE_WORKERS")
	}

	t.Setenv("PARSE_WORKERS", "0")
	if _, err := New(); err == nil {
		t.Error("expected error for PARSE_WORKERS=0")
	}
}
