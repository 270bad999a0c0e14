package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest accepted player name, in characters.
const MaxNameLength = 20

// NormalizeQuestion trims text and drops blank options, remapping the correct
// answer to its new position. A blank correct option maps to -1.
func NormalizeQuestion(q Question) Question {
	out := Question{
		ID:            q.ID,
		Text:          strings.TrimSpace(q.Text),
		CorrectAnswer: -1,
	}
	for i, opt := range q.Options {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			continue
		}
		if i == q.CorrectAnswer {
			out.CorrectAnswer = len(out.Options)
		}
		out.Options = append(out.Options, trimmed)
	}
	return out
}

// ValidateQuestion rejects empty text, fewer than two options and out-of-range answers.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "text", Message: "question text is required"}
	}
	nonEmpty := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return &ValidationError{Field: "options", Message: "at least 2 options are required"}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return &ValidationError{
			Field:   "correctAnswer",
			Message: fmt.Sprintf("must be between 0 and %d", len(q.Options)-1),
		}
	}
	return nil
}

// ValidQuestions filters a pool down to playable questions and normalizes
// them, so stored blank options never reach a player.
func ValidQuestions(pool []Question) []Question {
	out := make([]Question, 0, len(pool))
	for _, q := range pool {
		if ValidateQuestion(q) != nil {
			continue
		}
		q = NormalizeQuestion(q)
		if q.CorrectAnswer < 0 {
			continue
		}
		out = append(out, q)
	}
	return out
}

// NormalizeName trims a player name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
