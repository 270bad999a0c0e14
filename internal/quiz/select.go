package quiz

import (
	"math/rand"

	"trivia-quiz-service/internal/domain"
)

// SelectQuestions shuffles a copy of the pool (Fisher-Yates) and returns the first n.
// A pool smaller than n is returned whole, shuffled.
func SelectQuestions(pool []domain.Question, n int, rnd *rand.Rand) []domain.Question {
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}
