package supabase

import (
	"time"

	"trivia-quiz-service/internal/domain"
)

// Row shapes as PostgREST serializes the four tables.

type questionRow struct {
	ID            int64     `json:"id,omitempty"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correct_answer"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{ID: r.ID, Text: r.Text, Options: r.Options, CorrectAnswer: r.CorrectAnswer}
}

type leaderboardRow struct {
	ID             int64     `json:"id,omitempty"`
	Name           string    `json:"name"`
	PhoneNumber    *string   `json:"phone_number"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	SessionID      *string   `json:"session_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func leaderboardRowFrom(e domain.LeaderboardEntry) leaderboardRow {
	return leaderboardRow{
		Name:           e.Name,
		PhoneNumber:    optional(e.PhoneNumber),
		Score:          e.Score,
		TotalQuestions: e.TotalQuestions,
		Percentage:     e.Percentage,
		SessionID:      optional(e.SessionID),
		CreatedAt:      e.Timestamp.UTC(),
	}
}

func (r leaderboardRow) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		ID:             r.ID,
		Name:           r.Name,
		PhoneNumber:    deref(r.PhoneNumber),
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		Timestamp:      r.CreatedAt,
		SessionID:      deref(r.SessionID),
	}
}

type attemptRow struct {
	ID             int64     `json:"id,omitempty"`
	PlayerName     string    `json:"player_name"`
	SessionID      *string   `json:"session_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func attemptRowFrom(a domain.QuizAttempt) attemptRow {
	return attemptRow{
		PlayerName:     a.PlayerName,
		SessionID:      optional(a.SessionID),
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
		SessionID:      deref(r.SessionID),
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		CreatedAt:      r.CreatedAt,
		ExpiresAt:      r.ExpiresAt,
	}
}

type responseRow struct {
	ID              int64     `json:"id,omitempty"`
	AttemptID       int64     `json:"attempt_id"`
	QuestionText    string    `json:"question_text"`
	QuestionOptions []string  `json:"question_options"`
	UserAnswer      *int      `json:"user_answer"`
	CorrectAnswer   int       `json:"correct_answer"`
	IsCorrect       bool      `json:"is_correct"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r responseRow) toDomain() domain.QuizAttemptResponse {
	return domain.QuizAttemptResponse{
		ID:              r.ID,
		AttemptID:       r.AttemptID,
		QuestionText:    r.QuestionText,
		QuestionOptions: r.QuestionOptions,
		UserAnswer:      r.UserAnswer,
		CorrectAnswer:   r.CorrectAnswer,
		IsCorrect:       r.IsCorrect,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
