package domain

import "math"

// IsCorrect reports whether a recorded answer matches the correct option.
// Unanswered (nil) and timed-out answers never count.
func IsCorrect(answer *int, correct int) bool {
	return answer != nil && *answer != AnswerTimeout && *answer == correct
}

// Score counts correct answers. Answers beyond the question list are ignored
// and missing answers count as unanswered.
func Score(questions []Question, answers []*int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && IsCorrect(answers[i], q.CorrectAnswer) {
			score++
		}
	}
	return score
}

// Percentage rounds score/total to a whole percent.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// BuildResponses turns a finished quiz into attempt response rows.
func BuildResponses(attemptID int64, questions []Question, answers []*int) []QuizAttemptResponse {
	responses := make([]QuizAttemptResponse, 0, len(questions))
	for i, q := range questions {
		var answer *int
		if i < len(answers) && answers[i] != nil {
			v := *answers[i]
			answer = &v
		}
		responses = append(responses, QuizAttemptResponse{
			AttemptID:       attemptID,
			QuestionText:    q.Text,
			QuestionOptions: append([]string(nil), q.Options...),
			UserAnswer:      answer,
			CorrectAnswer:   q.CorrectAnswer,
			IsCorrect:       IsCorrect(answer, q.CorrectAnswer),
		})
	}
	return responses
}

// AnswerOf is a convenience for building recorded answers.
func AnswerOf(i int) *int {
	return &i
}
