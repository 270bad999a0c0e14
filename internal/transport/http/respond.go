package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-quiz-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// respondWithError logs the underlying error and sends only userMsg to the client.
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}
	writeJSON(w, status, map[string]string{"error": userMsg})
}

// respondWithDomainError maps service errors onto HTTP statuses. Validation
// messages are safe to show; anything unexpected becomes a generic 500.
func respondWithDomainError(w http.ResponseWriter, logMsg string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found", "", nil)
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "you can only delete your own entries", "", nil)
	case errors.Is(err, domain.ErrNotConfigured):
		respondWithError(w, http.StatusServiceUnavailable, "storage backend is not configured", logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error", logMsg, err)
	}
}
