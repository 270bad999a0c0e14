package domain

// HintBudgetPolicy returns the number of hints available for an attempt.
type HintBudgetPolicy func(attemptNumber int) int

// EligibilityPolicy reports whether an attempt's score is posted to the leaderboard.
type EligibilityPolicy func(attemptNumber int) bool

// MaxHints caps the hint budget regardless of attempt number.
const MaxHints = 5

// DefaultHintBudget gives no hints on the first attempt and two more per retry, capped at MaxHints.
func DefaultHintBudget(attemptNumber int) int {
	return min(MaxHints, max(0, (attemptNumber-1)*2))
}

// FirstAttemptOnly posts only the first attempt of a device to the leaderboard.
func FirstAttemptOnly(attemptNumber int) bool {
	return attemptNumber == 1
}

// EliminationCount is how many wrong options an elimination hint removes.
func EliminationCount(attemptNumber int) int {
	if attemptNumber > 4 {
		return 2
	}
	return 1
}
