// Package noop provides the gateway used when the hosted backend is not
// configured. The game stays playable; nothing is stored.
package noop

import (
	"context"
	"log"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// Gateway answers reads with empty results and rejects writes with
// domain.ErrNotConfigured. Every call logs a warning.
type Gateway struct {
	reason string
}

var _ app.Gateway = (*Gateway)(nil)

func NewGateway(reason string) *Gateway {
	if reason == "" {
		reason = "backend url or access token missing"
	}
	return &Gateway{reason: reason}
}

func (g *Gateway) warn(op string) {
	log.Printf("backend not configured (%s): %s skipped", g.reason, op)
}

func (g *Gateway) ActiveQuestions(context.Context) ([]domain.Question, error) {
	g.warn("select questions")
	return []domain.Question{}, nil
}

func (g *Gateway) GetQuestion(context.Context, int64) (domain.Question, error) {
	g.warn("select question")
	return domain.Question{}, domain.ErrNotFound
}

func (g *Gateway) CreateQuestion(context.Context, domain.Question) (domain.Question, error) {
	g.warn("insert question")
	return domain.Question{}, domain.ErrNotConfigured
}

func (g *Gateway) UpdateQuestion(context.Context, domain.Question) error {
	g.warn("update question")
	return domain.ErrNotConfigured
}

func (g *Gateway) DeactivateQuestion(context.Context, int64) error {
	g.warn("delete question")
	return domain.ErrNotConfigured
}

func (g *Gateway) InsertEntry(context.Context, domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	g.warn("insert leaderboard entry")
	return domain.LeaderboardEntry{}, domain.ErrNotConfigured
}

func (g *Gateway) TopEntries(context.Context, int) ([]domain.LeaderboardEntry, error) {
	g.warn("select leaderboard")
	return []domain.LeaderboardEntry{}, nil
}

func (g *Gateway) GetEntry(context.Context, int64) (domain.LeaderboardEntry, error) {
	g.warn("select leaderboard entry")
	return domain.LeaderboardEntry{}, domain.ErrNotFound
}

func (g *Gateway) DeleteEntry(context.Context, int64) error {
	g.warn("delete leaderboard entry")
	return domain.ErrNotConfigured
}

func (g *Gateway) ClearEntries(context.Context) (int, error) {
	g.warn("clear leaderboard")
	return 0, domain.ErrNotConfigured
}

func (g *Gateway) HasEntryForSession(context.Context, string) (bool, error) {
	g.warn("select leaderboard by session")
	return false, nil
}

func (g *Gateway) InsertAttempt(context.Context, domain.QuizAttempt, []domain.QuizAttemptResponse) (domain.QuizAttempt, error) {
	g.warn("insert attempt")
	return domain.QuizAttempt{}, domain.ErrNotConfigured
}

func (g *Gateway) ListAttempts(context.Context, app.AttemptFilter) ([]domain.AttemptWithResponses, error) {
	g.warn("select attempts")
	return []domain.AttemptWithResponses{}, nil
}

func (g *Gateway) CountAttemptsForSession(context.Context, string) (int, error) {
	g.warn("count attempts")
	return 0, nil
}

func (g *Gateway) DeleteAttempt(context.Context, int64) error {
	g.warn("delete attempt")
	return domain.ErrNotConfigured
}

func (g *Gateway) DeleteExpiredAttempts(context.Context, time.Time) (int, error) {
	g.warn("delete expired attempts")
	return 0, nil
}
