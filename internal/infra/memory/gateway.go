package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type questionRow struct {
	question domain.Question
	active   bool
}

// Gateway keeps every table in process memory. It is used for demos and
// tests and is lost on restart.
type Gateway struct {
	mu  sync.RWMutex
	now func() time.Time

	lastQuestionID int64
	lastEntryID    int64
	lastAttemptID  int64
	lastResponseID int64

	questions map[int64]*questionRow
	entries   map[int64]domain.LeaderboardEntry
	attempts  map[int64]domain.QuizAttempt
	responses map[int64][]domain.QuizAttemptResponse
}

var _ app.Gateway = (*Gateway)(nil)

// NewGateway returns a gateway whose question table holds seed.
func NewGateway(seed []domain.Question) *Gateway {
	g := &Gateway{
		now:       time.Now,
		questions: make(map[int64]*questionRow),
		entries:   make(map[int64]domain.LeaderboardEntry),
		attempts:  make(map[int64]domain.QuizAttempt),
		responses: make(map[int64][]domain.QuizAttemptResponse),
	}
	for _, q := range seed {
		_, _ = g.CreateQuestion(context.Background(), q)
	}
	return g
}

func (g *Gateway) ActiveQuestions(_ context.Context) ([]domain.Question, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.Question, 0, len(g.questions))
	for _, row := range g.questions {
		if row.active {
			out = append(out, cloneQuestion(row.question))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *Gateway) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	row, ok := g.questions[id]
	if !ok || !row.active {
		return domain.Question{}, domain.ErrNotFound
	}
	return cloneQuestion(row.question), nil
}

func (g *Gateway) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastQuestionID++
	q = cloneQuestion(q)
	q.ID = g.lastQuestionID
	g.questions[q.ID] = &questionRow{question: q, active: true}
	return cloneQuestion(q), nil
}

func (g *Gateway) UpdateQuestion(_ context.Context, q domain.Question) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	row, ok := g.questions[q.ID]
	if !ok || !row.active {
		return domain.ErrNotFound
	}
	row.question = cloneQuestion(q)
	return nil
}

func (g *Gateway) DeactivateQuestion(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	row, ok := g.questions[id]
	if !ok || !row.active {
		return domain.ErrNotFound
	}
	row.active = false
	return nil
}

func (g *Gateway) InsertEntry(_ context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastEntryID++
	entry.ID = g.lastEntryID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = g.now().UTC()
	}
	g.entries[entry.ID] = entry
	return entry, nil
}

func (g *Gateway) TopEntries(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	g.mu.RLock()
	out := make([]domain.LeaderboardEntry, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, e)
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	domain.SortLeaderboard(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *Gateway) GetEntry(_ context.Context, id int64) (domain.LeaderboardEntry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entries[id]
	if !ok {
		return domain.LeaderboardEntry{}, domain.ErrNotFound
	}
	return e, nil
}

func (g *Gateway) DeleteEntry(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(g.entries, id)
	return nil
}

func (g *Gateway) ClearEntries(_ context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.entries)
	g.entries = make(map[int64]domain.LeaderboardEntry)
	return n, nil
}

func (g *Gateway) HasEntryForSession(_ context.Context, sessionID string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, e := range g.entries {
		if sessionID != "" && e.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gateway) InsertAttempt(_ context.Context, attempt domain.QuizAttempt, responses []domain.QuizAttemptResponse) (domain.QuizAttempt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAttemptID++
	attempt.ID = g.lastAttemptID
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = g.now().UTC()
	}
	g.attempts[attempt.ID] = attempt

	rows := make([]domain.QuizAttemptResponse, len(responses))
	for i, r := range responses {
		g.lastResponseID++
		r.ID = g.lastResponseID
		r.AttemptID = attempt.ID
		r.QuestionOptions = append([]string(nil), r.QuestionOptions...)
		rows[i] = r
	}
	g.responses[attempt.ID] = rows
	return attempt, nil
}

func (g *Gateway) ListAttempts(_ context.Context, filter app.AttemptFilter) ([]domain.AttemptWithResponses, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.AttemptWithResponses, 0, len(g.attempts))
	for _, a := range g.attempts {
		if filter.PlayerName != "" && !strings.EqualFold(a.PlayerName, filter.PlayerName) {
			continue
		}
		if !filter.NotExpiredAt.IsZero() && a.Expired(filter.NotExpiredAt) {
			continue
		}
		out = append(out, domain.AttemptWithResponses{
			QuizAttempt: a,
			Responses:   append([]domain.QuizAttemptResponse(nil), g.responses[a.ID]...),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (g *Gateway) CountAttemptsForSession(_ context.Context, sessionID string) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, a := range g.attempts {
		if sessionID != "" && a.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (g *Gateway) DeleteAttempt(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.attempts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(g.attempts, id)
	delete(g.responses, id)
	return nil
}

func (g *Gateway) DeleteExpiredAttempts(_ context.Context, now time.Time) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for id, a := range g.attempts {
		if a.Expired(now) {
			delete(g.attempts, id)
			delete(g.responses, id)
			n++
		}
	}
	return n, nil
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
