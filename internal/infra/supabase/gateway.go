// Package supabase stores the quiz tables in a hosted Supabase project
// through its PostgREST endpoint.
package supabase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

const (
	tableQuestions   = "questions"
	tableLeaderboard = "leaderboard"
	tableAttempts    = "quiz_attempts"
	tableResponses   = "quiz_attempt_responses"

	returnRows = "representation"
	returnNone = "minimal"
)

// Gateway talks to PostgREST. Requests carry no timeout and are never
// retried; the caller's context is not forwarded because the client does
// not accept one.
type Gateway struct {
	client *supa.Client
	now    func() time.Time
}

var _ app.Gateway = (*Gateway)(nil)

// NewGateway builds a client for the project at url using the access token.
func NewGateway(url, accessToken string) (*Gateway, error) {
	client, err := supa.NewClient(strings.TrimRight(url, "/"), accessToken, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &Gateway{client: client, now: time.Now}, nil
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var ascending = &postgrest.OrderOpts{Ascending: true}
var descending = &postgrest.OrderOpts{Ascending: false}

func (g *Gateway) ActiveQuestions(_ context.Context) ([]domain.Question, error) {
	var rows []questionRow
	_, err := g.client.From(tableQuestions).
		Select("*", "", false).
		Eq("is_active", "true").
		Order("id", ascending).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	out := make([]domain.Question, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) GetQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	var rows []questionRow
	_, err := g.client.From(tableQuestions).
		Select("*", "", false).
		Eq("id", id(questionID)).
		Eq("is_active", "true").
		ExecuteTo(&rows)
	if err != nil {
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	if len(rows) == 0 {
		return domain.Question{}, domain.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (g *Gateway) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	now := g.now().UTC()
	row := questionRow{
		Text:          q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	var created []questionRow
	if _, err := g.client.From(tableQuestions).Insert(row, false, "", returnRows, "").ExecuteTo(&created); err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	if len(created) == 0 {
		return domain.Question{}, fmt.Errorf("insert question: no row returned")
	}
	return created[0].toDomain(), nil
}

func (g *Gateway) UpdateQuestion(_ context.Context, q domain.Question) error {
	patch := map[string]interface{}{
		"text":           q.Text,
		"options":        q.Options,
		"correct_answer": q.CorrectAnswer,
		"updated_at":     timestamp(g.now()),
	}
	return g.updateActiveQuestion(q.ID, patch, "update question")
}

func (g *Gateway) DeactivateQuestion(_ context.Context, questionID int64) error {
	patch := map[string]interface{}{
		"is_active":  false,
		"updated_at": timestamp(g.now()),
	}
	return g.updateActiveQuestion(questionID, patch, "deactivate question")
}

func (g *Gateway) updateActiveQuestion(questionID int64, patch map[string]interface{}, op string) error {
	var rows []questionRow
	_, err := g.client.From(tableQuestions).
		Update(patch, returnRows, "").
		Eq("id", id(questionID)).
		Eq("is_active", "true").
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *Gateway) InsertEntry(_ context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = g.now()
	}
	var created []leaderboardRow
	_, err := g.client.From(tableLeaderboard).
		Insert(leaderboardRowFrom(entry), false, "", returnRows, "").
		ExecuteTo(&created)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("insert leaderboard entry: %w", err)
	}
	if len(created) == 0 {
		return domain.LeaderboardEntry{}, fmt.Errorf("insert leaderboard entry: no row returned")
	}
	return created[0].toDomain(), nil
}

func (g *Gateway) TopEntries(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	q := g.client.From(tableLeaderboard).
		Select("*", "", false).
		Order("score", descending).
		Order("percentage", descending).
		Order("created_at", descending).
		Order("id", ascending)
	if limit > 0 {
		q = q.Limit(limit, "")
	}
	var rows []leaderboardRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	out := make([]domain.LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) GetEntry(_ context.Context, entryID int64) (domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	_, err := g.client.From(tableLeaderboard).
		Select("*", "", false).
		Eq("id", id(entryID)).
		ExecuteTo(&rows)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("select leaderboard entry: %w", err)
	}
	if len(rows) == 0 {
		return domain.LeaderboardEntry{}, domain.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (g *Gateway) DeleteEntry(_ context.Context, entryID int64) error {
	var rows []leaderboardRow
	_, err := g.client.From(tableLeaderboard).
		Delete(returnRows, "").
		Eq("id", id(entryID)).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("delete leaderboard entry: %w", err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *Gateway) ClearEntries(_ context.Context) (int, error) {
	// PostgREST refuses an unfiltered delete.
	var rows []leaderboardRow
	_, err := g.client.From(tableLeaderboard).
		Delete(returnRows, "").
		Gte("id", "0").
		ExecuteTo(&rows)
	if err != nil {
		return 0, fmt.Errorf("clear leaderboard: %w", err)
	}
	return len(rows), nil
}

func (g *Gateway) HasEntryForSession(_ context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	var rows []leaderboardRow
	_, err := g.client.From(tableLeaderboard).
		Select("id", "", false).
		Eq("session_id", sessionID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("select leaderboard by session: %w", err)
	}
	return len(rows) > 0, nil
}

// InsertAttempt writes the attempt and then its responses. A failed response
// write keeps the attempt and returns it with ErrResponsesIncomplete.
func (g *Gateway) InsertAttempt(_ context.Context, attempt domain.QuizAttempt, responses []domain.QuizAttemptResponse) (domain.QuizAttempt, error) {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = g.now()
	}
	var created []attemptRow
	_, err := g.client.From(tableAttempts).
		Insert(attemptRowFrom(attempt), false, "", returnRows, "").
		ExecuteTo(&created)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	if len(created) == 0 {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: no row returned")
	}
	stored := created[0].toDomain()
	if len(responses) == 0 {
		return stored, nil
	}

	rows := make([]responseRow, len(responses))
	for i, r := range responses {
		rows[i] = responseRow{
			AttemptID:       stored.ID,
			QuestionText:    r.QuestionText,
			QuestionOptions: r.QuestionOptions,
			UserAnswer:      r.UserAnswer,
			CorrectAnswer:   r.CorrectAnswer,
			IsCorrect:       r.IsCorrect,
			CreatedAt:       stored.CreatedAt.UTC(),
		}
	}
	if _, _, err := g.client.From(tableResponses).Insert(rows, false, "", returnNone, "").Execute(); err != nil {
		return stored, fmt.Errorf("insert attempt %d responses: %w: %w", stored.ID, domain.ErrResponsesIncomplete, err)
	}
	return stored, nil
}

func (g *Gateway) ListAttempts(_ context.Context, filter app.AttemptFilter) ([]domain.AttemptWithResponses, error) {
	q := g.client.From(tableAttempts).Select("*", "", false)
	if filter.PlayerName != "" {
		q = q.Ilike("player_name", escapeLike(filter.PlayerName))
	}
	if !filter.NotExpiredAt.IsZero() {
		q = q.Gte("expires_at", timestamp(filter.NotExpiredAt))
	}
	var rows []attemptRow
	if _, err := q.Order("created_at", descending).Order("id", descending).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, id(r.ID))
	}
	byAttempt := make(map[int64][]domain.QuizAttemptResponse, len(rows))
	if len(ids) > 0 {
		var responses []responseRow
		_, err := g.client.From(tableResponses).
			Select("*", "", false).
			In("attempt_id", ids).
			Order("id", ascending).
			ExecuteTo(&responses)
		if err != nil {
			return nil, fmt.Errorf("select attempt responses: %w", err)
		}
		for _, r := range responses {
			byAttempt[r.AttemptID] = append(byAttempt[r.AttemptID], r.toDomain())
		}
	}

	out := make([]domain.AttemptWithResponses, 0, len(rows))
	for _, r := range rows {
		// ilike is a pattern match; keep exact case-insensitive matches only.
		if filter.PlayerName != "" && !strings.EqualFold(r.PlayerName, filter.PlayerName) {
			continue
		}
		resp := byAttempt[r.ID]
		if resp == nil {
			resp = []domain.QuizAttemptResponse{}
		}
		out = append(out, domain.AttemptWithResponses{QuizAttempt: r.toDomain(), Responses: resp})
	}
	return out, nil
}

func (g *Gateway) CountAttemptsForSession(_ context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, nil
	}
	_, count, err := g.client.From(tableAttempts).
		Select("id", "exact", true).
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return int(count), nil
}

func (g *Gateway) DeleteAttempt(_ context.Context, attemptID int64) error {
	if _, _, err := g.client.From(tableResponses).Delete(returnNone, "").Eq("attempt_id", id(attemptID)).Execute(); err != nil {
		return fmt.Errorf("delete attempt responses: %w", err)
	}
	var rows []attemptRow
	_, err := g.client.From(tableAttempts).
		Delete(returnRows, "").
		Eq("id", id(attemptID)).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *Gateway) DeleteExpiredAttempts(_ context.Context, now time.Time) (int, error) {
	var expired []attemptRow
	_, err := g.client.From(tableAttempts).
		Select("id", "", false).
		Lt("expires_at", timestamp(now)).
		ExecuteTo(&expired)
	if err != nil {
		return 0, fmt.Errorf("select expired attempts: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}
	ids := make([]string, len(expired))
	for i, r := range expired {
		ids[i] = id(r.ID)
	}
	if _, _, err := g.client.From(tableResponses).Delete(returnNone, "").In("attempt_id", ids).Execute(); err != nil {
		return 0, fmt.Errorf("delete expired responses: %w", err)
	}
	if _, _, err := g.client.From(tableAttempts).Delete(returnNone, "").In("id", ids).Execute(); err != nil {
		return 0, fmt.Errorf("delete expired attempts: %w", err)
	}
	return len(ids), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `\*`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
