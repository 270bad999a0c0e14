package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/quiz"
)

// Mary's answers keyed by question text, against correct answers
// [0,1,2,2,1,1,3]: five right, one timeout, one wrong.
var maryAnswers = map[string]int{
	"Q0": 0, "Q1": 1, "Q2": domain.AnswerTimeout, "Q3": 2, "Q4": 0, "Q5": 1, "Q6": 3,
}

func TestMaryEndToEnd(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions())}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-mary-1")
	view, err := service.SubmitName(ctx, gameID, "  Mary ")
	if err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if view.Screen != app.ScreenQuiz || view.PlayerName != "Mary" || view.AttemptNumber != 1 || !view.LeaderboardEligible {
		t.Fatalf("unexpected view after name %+v", view)
	}

	report := playThrough(t, service, gameID, events, func(text string) int { return maryAnswers[text] })
	if report.Leaderboard != app.WriteSaved || report.Attempt != app.WriteSaved || report.Message != "" {
		t.Fatalf("expected both writes saved, got %+v", report)
	}

	entries, _ := gateway.TopEntries(ctx, 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 leaderboard row, got %d", len(entries))
	}
	if e := entries[0]; e.Name != "Mary" || e.Score != 5 || e.Percentage != 71 || e.TotalQuestions != 7 || e.SessionID != "device-mary-1" {
		t.Fatalf("unexpected leaderboard row %+v", e)
	}

	attempts, _ := gateway.ListAttempts(ctx, app.AttemptFilter{})
	if len(attempts) != 1 || len(attempts[0].Responses) != 7 {
		t.Fatalf("expected 1 attempt with 7 responses, got %+v", attempts)
	}
	a := attempts[0]
	if a.Score != 5 || a.Percentage != 71 || !a.ExpiresAt.Equal(a.CreatedAt.Add(time.Hour)) {
		t.Fatalf("unexpected attempt %+v", a.QuizAttempt)
	}
	timeouts := 0
	for _, r := range a.Responses {
		if r.UserAnswer != nil && *r.UserAnswer == domain.AnswerTimeout {
			timeouts++
			if r.IsCorrect {
				t.Fatalf("timeout marked correct")
			}
		}
	}
	if timeouts != 1 {
		t.Fatalf("expected 1 timeout response, got %d", timeouts)
	}

	got, err := service.Game(ctx, gameID)
	if err != nil || got.Screen != app.ScreenResults || got.Result == nil || got.Result.Score != 5 {
		t.Fatalf("expected results screen with score 5, got %+v (%v)", got, err)
	}
}

func TestFirstAttemptOnlyReachesLeaderboard(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions())}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	first := playThrough(t, service, gameID, events, answerZero)
	if first.Leaderboard != app.WriteSaved {
		t.Fatalf("expected first attempt posted, got %+v", first)
	}

	view, err := service.PlayAgain(ctx, gameID)
	if err != nil {
		t.Fatalf("play again: %v", err)
	}
	if view.Screen != app.ScreenNameEntry || view.PlayerName != "Mary" {
		t.Fatalf("expected name entry with prefill, got %+v", view)
	}

	view, err = service.SubmitName(ctx, gameID, "Mary")
	if err != nil {
		t.Fatalf("submit name again: %v", err)
	}
	if view.AttemptNumber != 2 || view.LeaderboardEligible {
		t.Fatalf("expected ineligible attempt 2, got %+v", view)
	}
	second := playThrough(t, service, gameID, events, answerZero)
	if second.Leaderboard != app.WriteSkipped || second.Attempt != app.WriteSaved {
		t.Fatalf("expected leaderboard skipped and attempt saved, got %+v", second)
	}

	entries, _ := gateway.TopEntries(ctx, 0)
	attempts, _ := gateway.ListAttempts(ctx, app.AttemptFilter{})
	if len(entries) != 1 || len(attempts) != 2 {
		t.Fatalf("expected 1 leaderboard row and 2 attempts, got %d and %d", len(entries), len(attempts))
	}
}

func TestLeaderboardFailureKeepsAttemptLog(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions()), failEntries: true}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	report := playThrough(t, service, gameID, events, func(text string) int { return maryAnswers[text] })
	if report.Leaderboard != app.WriteFailed || report.Attempt != app.WriteSaved || report.Message == "" {
		t.Fatalf("unexpected report %+v", report)
	}

	attempts, _ := gateway.ListAttempts(ctx, app.AttemptFilter{})
	if len(attempts) != 1 || len(attempts[0].Responses) != 7 || attempts[0].Score != 5 {
		t.Fatalf("expected full attempt log, got %+v", attempts)
	}

	// the flow is not blocked by the failure
	if _, err := service.ShowLeaderboard(ctx, gameID); err != nil {
		t.Fatalf("show leaderboard: %v", err)
	}
	if _, err := service.BackToResults(ctx, gameID); err != nil {
		t.Fatalf("back to results: %v", err)
	}
}

func TestAttemptLogFailureKeepsLeaderboardEntry(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions()), failAttempts: true}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	report := playThrough(t, service, gameID, events, answerZero)
	if report.Leaderboard != app.WriteSaved || report.Attempt != app.WriteFailed {
		t.Fatalf("unexpected report %+v", report)
	}

	entries, _ := gateway.TopEntries(ctx, 0)
	if len(entries) != 1 || entries[0].Name != "Mary" {
		t.Fatalf("expected leaderboard entry, got %+v", entries)
	}
}

func TestResponseFailureKeepsAttempt(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions()), failResponses: true}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	report := playThrough(t, service, gameID, events, answerZero)
	if report.Leaderboard != app.WriteSaved || report.Attempt != app.WritePartial || report.AttemptID == 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Failed() || report.Message == "" {
		t.Fatalf("expected a partial-save notice, got %+v", report)
	}

	attempts, _ := gateway.ListAttempts(ctx, app.AttemptFilter{})
	if len(attempts) != 1 || attempts[0].ID != report.AttemptID || attempts[0].PlayerName != "Mary" {
		t.Fatalf("expected the attempt row to remain, got %+v", attempts)
	}
}

func TestEligibilityCheckFailsOpen(t *testing.T) {
	ctx := context.Background()
	gateway := &flakyGateway{Gateway: memory.NewGateway(maryQuestions()), failEligibility: true}
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	view, err := service.SubmitName(ctx, gameID, "Mary")
	if err != nil {
		t.Fatalf("submit name: %v", err)
	}
	if view.AttemptNumber != 1 || view.LeaderboardEligible {
		t.Fatalf("expected unconfirmed first attempt, got %+v", view)
	}
	if _, err := service.Hint(ctx, gameID); err != domain.ErrHintUnavailable {
		t.Fatalf("expected no hints on first attempt, got %v", err)
	}

	report := playThrough(t, service, gameID, events, answerZero)
	if report.Leaderboard != app.WriteSkipped || report.Attempt != app.WriteSaved {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestAttemptNumberAfterExpiredAttemptsAreRemoved(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(maryQuestions())
	service := newTestService(gateway)
	past := time.Now().UTC().Add(-3 * time.Hour)

	_, _ = gateway.InsertEntry(ctx, domain.LeaderboardEntry{Name: "Mary", Score: 5, SessionID: "device-0001"})
	for i := 0; i < 2; i++ {
		_, _ = gateway.InsertAttempt(ctx, domain.QuizAttempt{PlayerName: "Mary", SessionID: "device-0001", CreatedAt: past, ExpiresAt: past.Add(time.Hour)}, nil)
	}
	if n, _ := gateway.DeleteExpiredAttempts(ctx, time.Now().UTC()); n != 2 {
		t.Fatalf("expected 2 expired attempts removed, got %d", n)
	}

	gameID, _ := openGame(t, service, "device-0001")
	view, err := service.SubmitName(ctx, gameID, "Mary")
	if err != nil {
		t.Fatalf("submit name: %v", err)
	}
	// the leaderboard row still marks the device as a returning player
	if view.AttemptNumber != 2 || view.LeaderboardEligible {
		t.Fatalf("expected ineligible attempt 2, got %+v", view)
	}
}

func TestScreenTransitions(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(maryQuestions())
	service := newTestService(gateway)

	view := service.NewGame(ctx, "device-0001")
	if view.Screen != app.ScreenSplash {
		t.Fatalf("expected splash, got %s", view.Screen)
	}
	if _, err := service.SubmitName(ctx, view.ID, "Mary"); err != domain.ErrInvalidTransition {
		t.Fatalf("expected invalid transition from splash, got %v", err)
	}
	if _, err := service.Answer(ctx, view.ID, 0); err != domain.ErrInvalidTransition {
		t.Fatalf("expected answer outside quiz rejected, got %v", err)
	}

	for _, want := range []app.Screen{app.ScreenRules, app.ScreenNameEntry} {
		got, err := service.Continue(ctx, view.ID)
		if err != nil || got.Screen != want {
			t.Fatalf("expected %s, got %s (%v)", want, got.Screen, err)
		}
	}
	if _, err := service.Continue(ctx, view.ID); err != domain.ErrInvalidTransition {
		t.Fatalf("expected continue from name entry rejected, got %v", err)
	}
	if _, err := service.SubmitName(ctx, view.ID, "   "); err != domain.ErrInvalidName {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := service.SubmitName(ctx, view.ID, "abcdefghijklmnopqrstu"); err != domain.ErrInvalidName {
		t.Fatalf("expected too long name rejected, got %v", err)
	}
	if _, err := service.ShowLeaderboard(ctx, view.ID); err != domain.ErrInvalidTransition {
		t.Fatalf("expected leaderboard before results rejected, got %v", err)
	}

	service.Close(ctx, view.ID)
	if _, err := service.Continue(ctx, view.ID); err != domain.ErrGameNotFound {
		t.Fatalf("expected closed game gone, got %v", err)
	}
}

func TestSubmitNameNeedsTwoValidQuestions(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway([]domain.Question{
		{Text: "Only one", Options: []string{"a", "b"}, CorrectAnswer: 0},
		{Text: "Broken", Options: []string{"a"}, CorrectAnswer: 0},
	})
	service := newTestService(gateway)

	gameID, _ := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != domain.ErrNotEnoughQuestions {
		t.Fatalf("expected ErrNotEnoughQuestions, got %v", err)
	}
	got, _ := service.Game(ctx, gameID)
	if got.Screen != app.ScreenNameEntry {
		t.Fatalf("expected to stay on name entry, got %s", got.Screen)
	}
}

func TestStoredBlankOptionsAreNotShown(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway([]domain.Question{
		{Text: "Q0", Options: []string{"A", "", "C"}, CorrectAnswer: 2},
		{Text: "Q1", Options: []string{"", "B", "C"}, CorrectAnswer: 1},
	})
	service := newTestService(gateway)

	gameID, events := openGame(t, service, "device-0001")
	if _, err := service.SubmitName(ctx, gameID, "Mary"); err != nil {
		t.Fatalf("submit name: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != "question" {
				continue
			}
			view := ev.Payload.(*quiz.QuestionView)
			if len(view.Options) != 2 {
				t.Fatalf("expected blank option dropped, got %q", view.Options)
			}
			for _, opt := range view.Options {
				if opt == "" {
					t.Fatalf("blank option shown: %q", view.Options)
				}
			}
			return
		case <-deadline:
			t.Fatalf("no question shown")
		}
	}
}

func TestDeleteOwnEntry(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(nil)
	service := newTestService(gateway)

	entry, _ := gateway.InsertEntry(ctx, domain.LeaderboardEntry{Name: "Mary", Score: 5, SessionID: "device-0001"})

	if err := service.DeleteOwnEntry(ctx, "device-0002", entry.ID); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden for other device, got %v", err)
	}
	if err := service.DeleteOwnEntry(ctx, "device-0001", entry.ID); err != nil {
		t.Fatalf("delete own entry: %v", err)
	}
	if err := service.DeleteOwnEntry(ctx, "device-0001", entry.ID); err != domain.ErrNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestLeaderboardRanks(t *testing.T) {
	ctx := context.Background()
	gateway := memory.NewGateway(nil)
	service := newTestService(gateway)

	for _, sp := range [][2]int{{90, 90}, {90, 90}, {80, 80}, {70, 70}} {
		_, _ = gateway.InsertEntry(ctx, domain.LeaderboardEntry{Name: "p", Score: sp[0], Percentage: sp[1]})
	}
	ranked, err := service.Leaderboard(ctx, 20)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []int{1, 1, 3, 4}
	for i, r := range ranked {
		if r.Rank != want[i] {
			t.Fatalf("rank %d: expected %d, got %d", i, want[i], r.Rank)
		}
	}
}

func newTestService(gateway app.Gateway) *app.GameService {
	cfg := quiz.DefaultConfig()
	cfg.TimerSeconds = 20
	cfg.TickInterval = 5 * time.Millisecond
	cfg.RevealDelay = time.Millisecond
	cfg.HintWindow = time.Millisecond
	return app.NewGameService(memory.NewGameStore(), memory.NewQuestionPool(gateway, time.Minute), gateway, app.GameConfig{
		Quiz:    cfg,
		NewRand: func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	})
}

// openGame creates a game, subscribes to it and walks to name entry.
func openGame(t *testing.T, service *app.GameService, sessionID string) (string, <-chan app.Event) {
	t.Helper()
	ctx := context.Background()
	view := service.NewGame(ctx, sessionID)
	events, cancel, err := service.Subscribe(ctx, view.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(cancel)
	t.Cleanup(func() { service.Close(ctx, view.ID) })
	for i := 0; i < 2; i++ {
		if _, err := service.Continue(ctx, view.ID); err != nil {
			t.Fatalf("continue: %v", err)
		}
	}
	return view.ID, events
}

// playThrough answers each question as it is shown until the results are saved.
// A negative answer lets the question time out.
func playThrough(t *testing.T, service *app.GameService, gameID string, events <-chan app.Event, answer func(text string) int) app.SaveReport {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed")
			}
			switch ev.Type {
			case "question":
				view := ev.Payload.(*quiz.QuestionView)
				if a := answer(view.Text); a >= 0 {
					if _, err := service.Answer(context.Background(), gameID, a); err != nil {
						t.Fatalf("answer %q: %v", view.Text, err)
					}
				}
			case "saved":
				return ev.Payload.(app.SaveReport)
			}
		case <-deadline:
			t.Fatalf("game did not finish")
		}
	}
}

func answerZero(string) int { return 0 }

func maryQuestions() []domain.Question {
	correct := []int{0, 1, 2, 2, 1, 1, 3}
	questions := make([]domain.Question, len(correct))
	for i, c := range correct {
		questions[i] = domain.Question{
			Text:          "Q" + string(rune('0'+i)),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: c,
		}
	}
	return questions
}

type flakyGateway struct {
	*memory.Gateway
	failEntries     bool
	failAttempts    bool
	failResponses   bool
	failEligibility bool
}

var errBackend = errors.New("permission denied for table")

func (g *flakyGateway) InsertEntry(ctx context.Context, e domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	if g.failEntries {
		return domain.LeaderboardEntry{}, errBackend
	}
	return g.Gateway.InsertEntry(ctx, e)
}

func (g *flakyGateway) InsertAttempt(ctx context.Context, a domain.QuizAttempt, r []domain.QuizAttemptResponse) (domain.QuizAttempt, error) {
	if g.failAttempts {
		return domain.QuizAttempt{}, errBackend
	}
	if g.failResponses {
		stored, err := g.Gateway.InsertAttempt(ctx, a, nil)
		if err != nil {
			return stored, err
		}
		return stored, fmt.Errorf("insert responses: %w: %w", domain.ErrResponsesIncomplete, errBackend)
	}
	return g.Gateway.InsertAttempt(ctx, a, r)
}

func (g *flakyGateway) CountAttemptsForSession(ctx context.Context, sessionID string) (int, error) {
	if g.failEligibility {
		return 0, errBackend
	}
	return g.Gateway.CountAttemptsForSession(ctx, sessionID)
}
