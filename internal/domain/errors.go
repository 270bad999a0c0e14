package domain

import "errors"

var (
	// ErrGameNotFound is returned when a play-through has not been started or was closed.
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidTransition is returned when a screen action does not apply to the current screen.
	ErrInvalidTransition = errors.New("invalid screen transition")
	// ErrQuestionLocked indicates the current question already has a final answer.
	ErrQuestionLocked = errors.New("question is locked")
	// ErrInvalidOption indicates a selected option is out of range or was eliminated.
	ErrInvalidOption = errors.New("option not selectable")
	// ErrHintUnavailable is returned when no hint can be activated for the current question.
	ErrHintUnavailable = errors.New("hint unavailable")
	// ErrSessionFinished is returned when acting on a session that has produced its results.
	ErrSessionFinished = errors.New("quiz session finished")
	// ErrNotEnoughQuestions is returned when the active pool cannot fill a quiz.
	ErrNotEnoughQuestions = errors.New("not enough valid questions")
	// ErrInvalidName indicates an empty or too long player name.
	ErrInvalidName = errors.New("invalid player name")
	// ErrNotConfigured is returned by writes when the backend credentials are missing.
	ErrNotConfigured = errors.New("backend not configured")
	// ErrResponsesIncomplete is returned alongside a stored attempt whose
	// per-question responses could not all be written.
	ErrResponsesIncomplete = errors.New("attempt saved without its responses")
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller's session does not own the row.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a rejected question before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
