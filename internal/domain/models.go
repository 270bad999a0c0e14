package domain

import "time"

// AnswerTimeout marks a question whose countdown expired without a selection.
const AnswerTimeout = -1

// Question models an MCQ question. Options are shown in insertion order.
type Question struct {
	ID            int64    `json:"id,omitempty" yaml:"id,omitempty"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
}

// LeaderboardEntry is one posted score.
type LeaderboardEntry struct {
	ID             int64     `json:"id,omitempty"`
	Name           string    `json:"name"`
	PhoneNumber    string    `json:"phoneNumber,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"sessionId,omitempty"`
}

// RankedEntry is a leaderboard entry with its displayed rank.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}

// QuizAttempt is one completed play-through recorded in the attempt log.
type QuizAttempt struct {
	ID             int64     `json:"id,omitempty"`
	PlayerName     string    `json:"playerName"`
	SessionID      string    `json:"sessionId,omitempty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Expired reports whether the attempt is past its retention window.
func (a QuizAttempt) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && a.ExpiresAt.Before(now)
}

// QuizAttemptResponse is the per-question record of an attempt.
// UserAnswer is nil when the question was never answered.
type QuizAttemptResponse struct {
	ID              int64    `json:"id,omitempty"`
	AttemptID       int64    `json:"attemptId"`
	QuestionText    string   `json:"questionText"`
	QuestionOptions []string `json:"questionOptions"`
	UserAnswer      *int     `json:"userAnswer"`
	CorrectAnswer   int      `json:"correctAnswer"`
	IsCorrect       bool     `json:"isCorrect"`
}

// AttemptWithResponses bundles an attempt and its responses for history views.
type AttemptWithResponses struct {
	QuizAttempt
	Responses []QuizAttemptResponse `json:"responses"`
}

// ImportResult summarizes a bulk question import.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ImportStatus compares a seed file with the active questions in the store.
type ImportStatus struct {
	TotalInFile     int `json:"totalInFile"`
	TotalInDatabase int `json:"totalInDatabase"`
	Missing         int `json:"missing"`
	Percentage      int `json:"percentage"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalEntries   int `json:"totalEntries"`
	WithPhone      int `json:"withPhone"`
	TotalQuestions int `json:"totalQuestions"`
	TotalAttempts  int `json:"totalAttempts"`
	TopScore       int `json:"topScore"`
	AverageScore   int `json:"averageScore"`
}
