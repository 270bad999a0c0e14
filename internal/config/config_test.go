package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9000"
backend:
  driver: sqlite
  url: https://example.supabase.co
quiz:
  question_count: 5
  reveal_delay: 3s
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PORT", "8081")
	t.Setenv("BACKEND_ACCESS_TOKEN", "sb_publishable_abc")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8081" {
		t.Fatalf("expected env port, got %s", cfg.Server.Port)
	}
	if cfg.Driver() != DriverSQLite || cfg.Quiz.QuestionCount != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.BackendConfigured() {
		t.Fatalf("expected backend configured with publishable key")
	}
	if got := TTLDuration(cfg.Quiz.RevealDelay, time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s reveal delay, got %v", got)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("empty env var must not override, got %q", cfg.Redis.Addr)
	}
}

func TestValidAccessToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"", false},
		{"short", false},
		{"sb_publishable_x", true},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", true},
	}
	for _, tt := range tests {
		if got := ValidAccessToken(tt.token); got != tt.want {
			t.Fatalf("ValidAccessToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("nonsense", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
}

func TestParseQuestions(t *testing.T) {
	wrapped := []byte(`
questions:
  - text: What is 2 + 2?
    options: ["3", "4"]
    correctAnswer: 1
`)
	qs, err := ParseQuestions(wrapped)
	if err != nil || len(qs) != 1 || qs[0].CorrectAnswer != 1 {
		t.Fatalf("unexpected wrapped parse %+v (%v)", qs, err)
	}

	bare := []byte(`[{"text": "Capital of France?", "options": ["Paris", "Rome"], "correctAnswer": 0}]`)
	qs, err = ParseQuestions(bare)
	if err != nil || len(qs) != 1 || qs[0].Options[0] != "Paris" {
		t.Fatalf("unexpected bare parse %+v (%v)", qs, err)
	}
}
