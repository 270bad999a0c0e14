package relational

import (
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Text          string    `bun:"text,notnull"`
	Options       []string  `bun:"options,notnull"`
	CorrectAnswer int       `bun:"correct_answer,notnull"`
	IsActive      bool      `bun:"is_active,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:            r.ID,
		Text:          r.Text,
		Options:       append([]string(nil), r.Options...),
		CorrectAnswer: r.CorrectAnswer,
	}
}

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard,alias:l"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,notnull"`
	PhoneNumber    string    `bun:"phone_number,nullzero"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     int       `bun:"percentage,notnull"`
	SessionID      string    `bun:"session_id,nullzero"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

func leaderboardRowFrom(e domain.LeaderboardEntry) leaderboardRow {
	return leaderboardRow{
		ID:             e.ID,
		Name:           e.Name,
		PhoneNumber:    e.PhoneNumber,
		Score:          e.Score,
		TotalQuestions: e.TotalQuestions,
		Percentage:     e.Percentage,
		SessionID:      e.SessionID,
		CreatedAt:      e.Timestamp.UTC(),
	}
}

func (r leaderboardRow) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		ID:             r.ID,
		Name:           r.Name,
		PhoneNumber:    r.PhoneNumber,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		Timestamp:      r.CreatedAt,
		SessionID:      r.SessionID,
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:a"`

	ID             int64     `bun:"id,pk,autoincrement"`
	PlayerName     string    `bun:"player_name,notnull"`
	SessionID      string    `bun:"session_id,nullzero"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     int       `bun:"percentage,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	ExpiresAt      time.Time `bun:"expires_at,notnull"`
}

func attemptRowFrom(a domain.QuizAttempt) attemptRow {
	return attemptRow{
		ID:             a.ID,
		PlayerName:     a.PlayerName,
		SessionID:      a.SessionID,
		Score:          a.Score,
		TotalQuestions: a.TotalQuestions,
		Percentage:     a.Percentage,
		CreatedAt:      a.CreatedAt.UTC(),
		ExpiresAt:      a.ExpiresAt.UTC(),
	}
}

func (r attemptRow) toDomain() domain.QuizAttempt {
	return domain.QuizAttempt{
		ID:             r.ID,
		PlayerName:     r.PlayerName,
		SessionID:      r.SessionID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		CreatedAt:      r.CreatedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

type responseRow struct {
	bun.BaseModel `bun:"table:quiz_attempt_responses,alias:r"`

	ID              int64     `bun:"id,pk,autoincrement"`
	AttemptID       int64     `bun:"attempt_id,notnull"`
	QuestionText    string    `bun:"question_text,notnull"`
	QuestionOptions []string  `bun:"question_options,notnull"`
	UserAnswer      *int      `bun:"user_answer"`
	CorrectAnswer   int       `bun:"correct_answer,notnull"`
	IsCorrect       bool      `bun:"is_correct,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

func (r responseRow) toDomain() domain.QuizAttemptResponse {
	return domain.QuizAttemptResponse{
		ID:              r.ID,
		AttemptID:       r.AttemptID,
		QuestionText:    r.QuestionText,
		QuestionOptions: append([]string(nil), r.QuestionOptions...),
		UserAnswer:      r.UserAnswer,
		CorrectAnswer:   r.CorrectAnswer,
		IsCorrect:       r.IsCorrect,
	}
}
