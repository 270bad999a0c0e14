package app

import (
	"context"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuestionStore is the questions table. Deleted questions stay in storage
// with is_active cleared and are never returned.
type QuestionStore interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeactivateQuestion(ctx context.Context, id int64) error
}

// LeaderboardStore is the leaderboard table. TopEntries returns entries in
// ranking order; a limit <= 0 returns all of them.
type LeaderboardStore interface {
	InsertEntry(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error)
	TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	GetEntry(ctx context.Context, id int64) (domain.LeaderboardEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ClearEntries(ctx context.Context) (int, error)
	HasEntryForSession(ctx context.Context, sessionID string) (bool, error)
}

// AttemptFilter narrows attempt history queries.
type AttemptFilter struct {
	PlayerName string
	// NotExpiredAt hides attempts whose expiry is before the given instant.
	NotExpiredAt time.Time
}

// AttemptStore is the attempt log: quiz_attempts with quiz_attempt_responses.
// InsertAttempt assigns the attempt ID to every response before writing them.
// The attempt is never rolled back: when only the responses fail it is
// returned together with an error wrapping domain.ErrResponsesIncomplete.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, attempt domain.QuizAttempt, responses []domain.QuizAttemptResponse) (domain.QuizAttempt, error)
	ListAttempts(ctx context.Context, filter AttemptFilter) ([]domain.AttemptWithResponses, error)
	CountAttemptsForSession(ctx context.Context, sessionID string) (int, error)
	DeleteAttempt(ctx context.Context, id int64) error
	DeleteExpiredAttempts(ctx context.Context, now time.Time) (int, error)
}

// Gateway is the full persistence surface used by the services.
type Gateway interface {
	QuestionStore
	LeaderboardStore
	AttemptStore
}

// QuestionPool serves the active question pool, usually through a cache.
type QuestionPool interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
	Invalidate(ctx context.Context) error
}

// GameRepository abstracts where live games are kept (in-memory, Redis, etc).
type GameRepository interface {
	Put(game *Game)
	Get(id string) (*Game, bool)
	Delete(id string)
}
