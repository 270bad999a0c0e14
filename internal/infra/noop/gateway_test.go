package noop

import (
	"context"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestGatewayReadsEmptyWritesFail(t *testing.T) {
	ctx := context.Background()
	g := NewGateway("")

	questions, err := g.ActiveQuestions(ctx)
	if err != nil || len(questions) != 0 {
		t.Fatalf("expected empty pool, got %v %v", questions, err)
	}
	entries, err := g.TopEntries(ctx, 10)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %v %v", entries, err)
	}
	if _, err := g.InsertEntry(ctx, domain.LeaderboardEntry{Name: "Mary"}); err != domain.ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.InsertAttempt(ctx, domain.QuizAttempt{PlayerName: "Mary"}, nil); err != domain.ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
