package http

import (
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/identity"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/quiz"
)

const testSecret = "test-admin-secret"

type testEnv struct {
	server  *httptest.Server
	gateway *memory.Gateway
	games   *app.GameService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gateway := memory.NewGateway(sampleQuestions())
	pool := memory.NewQuestionPool(gateway, time.Minute)

	cfg := quiz.DefaultConfig()
	cfg.TimerSeconds = 200
	cfg.TickInterval = 5 * time.Millisecond
	cfg.RevealDelay = time.Millisecond
	cfg.HintWindow = time.Millisecond
	games := app.NewGameService(memory.NewGameStore(), pool, gateway, app.GameConfig{
		Quiz:    cfg,
		NewRand: func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	})

	handler := NewRouter(RouterConfig{
		Games:       games,
		Admin:       app.NewAdminService(gateway, pool, 0),
		Identity:    identity.NewService(0),
		AdminSecret: testSecret,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &testEnv{server: server, gateway: gateway, games: games}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1},
		{Text: "Largest planet?", Options: []string{"Mars", "Jupiter", "Venus"}, CorrectAnswer: 1},
	}
}

// correctOption maps question text to the option text that wins it.
var correctOption = map[string]string{
	"What is 2 + 2?":  "4",
	"Largest planet?": "Jupiter",
}
