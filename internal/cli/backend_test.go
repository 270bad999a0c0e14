package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	redisinfra "trivia-quiz-service/internal/infra/redis"
)

func TestOpenBackendMemorySeeds(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "questions.yaml")
	data := []byte(`questions:
  - text: "What is 2 + 2?"
    options: ["3", "4"]
    correctAnswer: 1
  - text: "Largest planet?"
    options: ["Mars", "Jupiter"]
    correctAnswer: 1
`)
	if err := os.WriteFile(seed, data, 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	var cfg config.Config
	cfg.Seed.Questions = seed

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	questions, err := b.loader.ActiveQuestions(context.Background())
	if err != nil {
		t.Fatalf("active questions: %v", err)
	}
	if len(questions) != 2 || questions[1].Text != "Largest planet?" {
		t.Fatalf("unexpected seeded questions %+v", questions)
	}
}

func TestOpenBackendSupabaseWithoutCredentialsDegrades(t *testing.T) {
	var cfg config.Config
	cfg.Backend.Driver = config.DriverSupabase
	cfg.Backend.URL = "https://example.supabase.co"
	cfg.Backend.AccessToken = "short"

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	_, err = b.gateway.InsertEntry(context.Background(), domain.LeaderboardEntry{Name: "Mary"})
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestOpenBackendSQLiteMigrates(t *testing.T) {
	var cfg config.Config
	cfg.Backend.Driver = config.DriverSQLite
	cfg.SQLite.Path = "file:cli_backend_test?mode=memory&cache=shared"

	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	if _, err := b.gateway.CreateQuestion(ctx, domain.Question{Text: "q", Options: []string{"a", "b"}}); err != nil {
		t.Fatalf("create question: %v", err)
	}
	questions, err := b.loader.ActiveQuestions(ctx)
	if err != nil || len(questions) != 1 {
		t.Fatalf("expected one question, got %d (%v)", len(questions), err)
	}
}

func TestOpenBackendUnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Backend.Driver = "mysql"
	if _, err := openBackend(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestQuizConfigOverrides(t *testing.T) {
	var cfg config.Config
	cfg.Quiz.TimerSeconds = 30
	cfg.Quiz.RevealDelay = "500ms"

	qc := quizConfig(cfg)
	if qc.TimerSeconds != 30 || qc.RevealDelay != 500*time.Millisecond {
		t.Fatalf("overrides not applied: %+v", qc)
	}
	if qc.QuestionCount != 7 || qc.HintWindow != 2*time.Second {
		t.Fatalf("defaults not kept: %+v", qc)
	}
}

func TestImportInvalidatesSharedPool(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	if err := mr.Set(redisinfra.ActiveQuestionsKey, `[{"id":1,"text":"stale","options":["a","b"],"correctAnswer":0}]`); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	file := filepath.Join(t.TempDir(), "questions.yaml")
	data := []byte(`- text: "Fastest land animal?"
  options: ["Cheetah", "Horse"]
  correctAnswer: 0
`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	var cfg config.Config
	cfg.Redis.Addr = mr.Addr()

	if err := runImport(context.Background(), cfg, file, false); err != nil {
		t.Fatalf("import: %v", err)
	}
	if mr.Exists(redisinfra.ActiveQuestionsKey) {
		t.Fatalf("expected cached pool invalidated after import")
	}
}
