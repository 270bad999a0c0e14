package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
		field   string
	}{
		{
			name: "valid question",
			q:    Question{Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: 0},
		},
		{
			name:    "empty text",
			q:       Question{Text: "   ", Options: []string{"a", "b"}},
			wantErr: true,
			field:   "text",
		},
		{
			name:    "one option",
			q:       Question{Text: "Q", Options: []string{"a", " "}},
			wantErr: true,
			field:   "options",
		},
		{
			name:    "negative answer",
			q:       Question{Text: "Q", Options: []string{"a", "b"}, CorrectAnswer: -1},
			wantErr: true,
			field:   "correctAnswer",
		},
		{
			name:    "answer out of range",
			q:       Question{Text: "Q", Options: []string{"a", "b"}, CorrectAnswer: 2},
			wantErr: true,
			field:   "correctAnswer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion(tt.q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}
}

func TestNormalizeQuestionRemapsCorrectAnswer(t *testing.T) {
	q := NormalizeQuestion(Question{Text: "  Q  ", Options: []string{"", " a ", "", "b"}, CorrectAnswer: 3})
	if q.Text != "Q" {
		t.Fatalf("expected trimmed text, got %q", q.Text)
	}
	if len(q.Options) != 2 || q.Options[0] != "a" || q.Options[1] != "b" {
		t.Fatalf("unexpected options %v", q.Options)
	}
	if q.CorrectAnswer != 1 {
		t.Fatalf("expected correct answer remapped to 1, got %d", q.CorrectAnswer)
	}

	blank := NormalizeQuestion(Question{Text: "Q", Options: []string{" ", "a", "b"}, CorrectAnswer: 0})
	if ValidateQuestion(blank) == nil {
		t.Fatalf("expected blank correct option to be rejected")
	}
}

func TestValidQuestionsDropsBlankOptions(t *testing.T) {
	pool := []Question{
		{ID: 1, Text: "Q1", Options: []string{"A", "", "C"}, CorrectAnswer: 2},
		{ID: 2, Text: "Q2", Options: []string{"A", " ", "C"}, CorrectAnswer: 1},
		{ID: 3, Text: "Q3", Options: []string{"A", "B"}, CorrectAnswer: 0},
	}
	valid := ValidQuestions(pool)
	if len(valid) != 2 || valid[0].ID != 1 || valid[1].ID != 3 {
		t.Fatalf("expected questions 1 and 3, got %+v", valid)
	}
	if got := valid[0]; len(got.Options) != 2 || got.Options[1] != "C" || got.CorrectAnswer != 1 {
		t.Fatalf("expected blank option removed and answer remapped, got %+v", got)
	}
	if len(pool[0].Options) != 3 {
		t.Fatalf("pool was modified: %+v", pool[0])
	}
}

func TestNormalizeName(t *testing.T) {
	if name, err := NormalizeName("  Mary "); err != nil || name != "Mary" {
		t.Fatalf("expected Mary, got %q %v", name, err)
	}
	if _, err := NormalizeName("   "); err != ErrInvalidName {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := NormalizeName("abcdefghijklmnopqrstu"); err != ErrInvalidName {
		t.Fatalf("expected name over 20 chars rejected, got %v", err)
	}
}

func TestDefaultHintBudget(t *testing.T) {
	want := map[int]int{1: 0, 2: 2, 3: 4, 4: 5, 9: 5}
	for attempt, hints := range want {
		if got := DefaultHintBudget(attempt); got != hints {
			t.Fatalf("attempt %d: expected %d hints, got %d", attempt, hints, got)
		}
	}
	if EliminationCount(4) != 1 || EliminationCount(5) != 2 {
		t.Fatalf("unexpected elimination counts")
	}
	if !FirstAttemptOnly(1) || FirstAttemptOnly(2) {
		t.Fatalf("expected only attempt 1 to be eligible")
	}
}

func TestScoreRederivesFromAnswers(t *testing.T) {
	questions := questionsWithAnswers(0, 1, 2, 2, 1, 1, 3)
	answers := []*int{AnswerOf(0), AnswerOf(1), AnswerOf(AnswerTimeout), AnswerOf(2), AnswerOf(0), AnswerOf(1), AnswerOf(3)}

	score := Score(questions, answers)
	if score != 5 {
		t.Fatalf("expected score 5, got %d", score)
	}
	if pct := Percentage(score, len(questions)); pct != 71 {
		t.Fatalf("expected 71%%, got %d", pct)
	}

	partial := []*int{AnswerOf(0), nil, AnswerOf(AnswerTimeout)}
	if got := Score(questions, partial); got != 1 {
		t.Fatalf("expected unanswered and timeout to score 0, got %d", got)
	}
}

func TestBuildResponses(t *testing.T) {
	questions := questionsWithAnswers(0, 1, 2)
	answers := []*int{AnswerOf(0), AnswerOf(AnswerTimeout)}

	responses := BuildResponses(42, questions, answers)
	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	if !responses[0].IsCorrect || responses[0].AttemptID != 42 {
		t.Fatalf("expected first response correct, got %+v", responses[0])
	}
	if responses[1].IsCorrect || *responses[1].UserAnswer != AnswerTimeout {
		t.Fatalf("expected timeout response, got %+v", responses[1])
	}
	if responses[2].UserAnswer != nil || responses[2].IsCorrect {
		t.Fatalf("expected unanswered response, got %+v", responses[2])
	}
}

func TestRankSharesTiedPositions(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		{Name: "a", Score: 90, Percentage: 90, Timestamp: base},
		{Name: "b", Score: 90, Percentage: 90, Timestamp: base.Add(-time.Minute)},
		{Name: "c", Score: 80, Percentage: 80, Timestamp: base},
		{Name: "d", Score: 70, Percentage: 70, Timestamp: base},
	}
	ranked := Rank(entries)
	want := []int{1, 1, 3, 4}
	for i, r := range ranked {
		if r.Rank != want[i] {
			t.Fatalf("entry %d: expected rank %d, got %d", i, want[i], r.Rank)
		}
	}
}

func TestSortLeaderboard(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []LeaderboardEntry{
		{Name: "old", Score: 5, Percentage: 71, Timestamp: base},
		{Name: "low", Score: 3, Percentage: 43, Timestamp: base.Add(time.Hour)},
		{Name: "new", Score: 5, Percentage: 71, Timestamp: base.Add(time.Minute)},
		{Name: "top", Score: 7, Percentage: 100, Timestamp: base},
	}
	SortLeaderboard(entries)
	order := []string{"top", "new", "old", "low"}
	for i, name := range order {
		if entries[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
}

func TestMatchesSearch(t *testing.T) {
	entry := LeaderboardEntry{Name: "Mary Jones", PhoneNumber: "+44 7700 900123", Score: 57}
	tests := []struct {
		term string
		want bool
	}{
		{term: "", want: true},
		{term: "  mary ", want: true},
		{term: "JONES", want: true},
		{term: "7700", want: true},
		{term: "57", want: true},
		{term: "bob", want: false},
		{term: "58", want: false},
	}
	for _, tt := range tests {
		if got := MatchesSearch(entry, tt.term); got != tt.want {
			t.Fatalf("MatchesSearch(%q): expected %v, got %v", tt.term, tt.want, got)
		}
	}
	if MatchesSearch(LeaderboardEntry{Name: "Bob", Score: 3}, "+44") {
		t.Fatalf("entry without a phone number matched a phone search")
	}
}

func questionsWithAnswers(correct ...int) []Question {
	questions := make([]Question, len(correct))
	for i, c := range correct {
		questions[i] = Question{
			ID:            int64(i + 1),
			Text:          "Question",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: c,
		}
	}
	return questions
}
