package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/identity"
	"trivia-quiz-service/internal/metrics"
)

const maxImportBytes = 4 << 20

// RouterConfig carries what the HTTP surface needs.
type RouterConfig struct {
	Games            *app.GameService
	Admin            *app.AdminService
	Identity         *identity.Service
	AdminSecret      string
	CORSOrigins      []string
	LeaderboardLimit int
}

type api struct {
	games    *app.GameService
	admin    *app.AdminService
	identity *identity.Service
	limit    int
}

// NewRouter builds the full HTTP handler: health, metrics, the game socket,
// the player API and the admin API.
func NewRouter(cfg RouterConfig) http.Handler {
	a := &api{
		games:    cfg.Games,
		admin:    cfg.Admin,
		identity: cfg.Identity,
		limit:    config.IntOr(cfg.LeaderboardLimit, 20),
	}
	ws := NewWSHandler(cfg.Games, cfg.Identity, originChecker(cfg.CORSOrigins))

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)

	r.HandleFunc("/api/session", a.session).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard", a.leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard/{id:[0-9]+}", a.deleteOwnEntry).Methods(http.MethodDelete)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(AdminAuth(cfg.AdminSecret))
	admin.HandleFunc("/stats", a.stats).Methods(http.MethodGet)
	admin.HandleFunc("/questions", a.listQuestions).Methods(http.MethodGet)
	admin.HandleFunc("/questions", a.createQuestion).Methods(http.MethodPost)
	admin.HandleFunc("/questions/import", a.importQuestions).Methods(http.MethodPost)
	admin.HandleFunc("/questions/import/status", a.importStatus).Methods(http.MethodPost)
	admin.HandleFunc("/questions/{id:[0-9]+}", a.getQuestion).Methods(http.MethodGet)
	admin.HandleFunc("/questions/{id:[0-9]+}", a.updateQuestion).Methods(http.MethodPut)
	admin.HandleFunc("/questions/{id:[0-9]+}", a.deleteQuestion).Methods(http.MethodDelete)
	admin.HandleFunc("/leaderboard", a.adminLeaderboard).Methods(http.MethodGet)
	admin.HandleFunc("/leaderboard", a.clearLeaderboard).Methods(http.MethodDelete)
	admin.HandleFunc("/leaderboard/{id:[0-9]+}", a.deleteEntry).Methods(http.MethodDelete)
	admin.HandleFunc("/attempts", a.listAttempts).Methods(http.MethodGet)
	admin.HandleFunc("/attempts/cleanup", a.cleanupAttempts).Methods(http.MethodPost)
	admin.HandleFunc("/attempts/{id:[0-9]+}", a.deleteAttempt).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", identity.HeaderName},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// originChecker allows every origin when none are configured.
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (a *api) session(w http.ResponseWriter, r *http.Request) {
	token := a.identity.Resolve(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": token})
}

func (a *api) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := a.limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive number", "", nil)
			return
		}
		limit = n
	}
	entries, err := a.games.Leaderboard(r.Context(), limit)
	if err != nil {
		respondWithDomainError(w, "load leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *api) deleteOwnEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	token, ok := a.identity.Lookup(r)
	if !ok {
		respondWithError(w, http.StatusForbidden, "you can only delete your own entries", "", nil)
		return
	}
	if err := a.games.DeleteOwnEntry(r.Context(), token, id); err != nil {
		respondWithDomainError(w, "delete own leaderboard entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.admin.Stats(r.Context())
	if err != nil {
		respondWithDomainError(w, "load stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.admin.ListQuestions(r.Context())
	if err != nil {
		respondWithDomainError(w, "list questions", err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *api) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	q, err := a.admin.GetQuestion(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, "get question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func decodeQuestion(w http.ResponseWriter, r *http.Request) (domain.Question, bool) {
	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid question body", "", nil)
		return q, false
	}
	return q, true
}

func (a *api) createQuestion(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuestion(w, r)
	if !ok {
		return
	}
	created, err := a.admin.CreateQuestion(r.Context(), q)
	if err != nil {
		respondWithDomainError(w, "create question", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *api) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	q, ok := decodeQuestion(w, r)
	if !ok {
		return
	}
	q.ID = id
	updated, err := a.admin.UpdateQuestion(r.Context(), q)
	if err != nil {
		respondWithDomainError(w, "update question", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *api) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	if err := a.admin.DeleteQuestion(r.Context(), id); err != nil {
		respondWithDomainError(w, "delete question", err)
		return
	}
	logAdminAction(r, fmt.Sprintf("deleted question %d", id))
	w.WriteHeader(http.StatusNoContent)
}

func readQuestionFile(w http.ResponseWriter, r *http.Request) ([]domain.Question, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("question file exceeds %d bytes", maxImportBytes), "", nil)
			return nil, false
		}
		respondWithError(w, http.StatusBadRequest, "could not read body", "read import body", err)
		return nil, false
	}
	questions, err := config.ParseQuestions(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "body must be a question list or {questions: [...]}", "", nil)
		return nil, false
	}
	return questions, true
}

func (a *api) importQuestions(w http.ResponseWriter, r *http.Request) {
	questions, ok := readQuestionFile(w, r)
	if !ok {
		return
	}
	result, err := a.admin.ImportQuestions(r.Context(), questions)
	if err != nil {
		respondWithDomainError(w, "import questions", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *api) importStatus(w http.ResponseWriter, r *http.Request) {
	questions, ok := readQuestionFile(w, r)
	if !ok {
		return
	}
	status, err := a.admin.ImportStatus(r.Context(), questions)
	if err != nil {
		respondWithDomainError(w, "import status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *api) adminLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.admin.Leaderboard(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondWithDomainError(w, "admin leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *api) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	if err := a.admin.DeleteEntry(r.Context(), id); err != nil {
		respondWithDomainError(w, "delete leaderboard entry", err)
		return
	}
	logAdminAction(r, fmt.Sprintf("deleted leaderboard entry %d", id))
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) clearLeaderboard(w http.ResponseWriter, r *http.Request) {
	n, err := a.admin.ClearLeaderboard(r.Context())
	if err != nil {
		respondWithDomainError(w, "clear leaderboard", err)
		return
	}
	logAdminAction(r, fmt.Sprintf("cleared leaderboard (%d entries)", n))
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (a *api) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := a.admin.ListAttempts(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		respondWithDomainError(w, "list attempts", err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *api) deleteAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid id", "", nil)
		return
	}
	if err := a.admin.DeleteAttempt(r.Context(), id); err != nil {
		respondWithDomainError(w, "delete attempt", err)
		return
	}
	logAdminAction(r, fmt.Sprintf("deleted attempt %d", id))
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) cleanupAttempts(w http.ResponseWriter, r *http.Request) {
	n, err := a.admin.CleanupExpiredAttempts(r.Context())
	if err != nil {
		respondWithDomainError(w, "cleanup attempts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
