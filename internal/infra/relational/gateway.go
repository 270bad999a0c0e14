package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// Gateway stores every table in a SQL database through bun. The same code
// runs on Postgres and SQLite.
type Gateway struct {
	db  *bun.DB
	now func() time.Time
}

var _ app.Gateway = (*Gateway)(nil)

func NewGateway(db *bun.DB) *Gateway {
	return &Gateway{db: db, now: time.Now}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (g *Gateway) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	var rows []questionRow
	err := g.db.NewSelect().
		Model(&rows).
		Where("is_active = ?", true).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	out := make([]domain.Question, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var row questionRow
	err := g.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Where("is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return domain.Question{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (g *Gateway) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	now := g.now().UTC()
	row := questionRow{
		Text:          q.Text,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return row.toDomain(), nil
}

func (g *Gateway) UpdateQuestion(ctx context.Context, q domain.Question) error {
	res, err := g.db.NewUpdate().
		Model((*questionRow)(nil)).
		Set("text = ?", q.Text).
		Set("options = ?", q.Options).
		Set("correct_answer = ?", q.CorrectAnswer).
		Set("updated_at = ?", g.now().UTC()).
		Where("id = ?", q.ID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return affected(res)
}

func (g *Gateway) DeactivateQuestion(ctx context.Context, id int64) error {
	res, err := g.db.NewUpdate().
		Model((*questionRow)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", g.now().UTC()).
		Where("id = ?", id).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate question: %w", err)
	}
	return affected(res)
}

func (g *Gateway) InsertEntry(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = g.now()
	}
	row := leaderboardRowFrom(entry)
	row.ID = 0
	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return row.toDomain(), nil
}

func (g *Gateway) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	q := g.db.NewSelect().
		Model(&rows).
		Order("score DESC", "percentage DESC", "created_at DESC", "id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	out := make([]domain.LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (g *Gateway) GetEntry(ctx context.Context, id int64) (domain.LeaderboardEntry, error) {
	var row leaderboardRow
	if err := g.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.LeaderboardEntry{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (g *Gateway) DeleteEntry(ctx context.Context, id int64) error {
	res, err := g.db.NewDelete().Model((*leaderboardRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete leaderboard entry: %w", err)
	}
	return affected(res)
}

func (g *Gateway) ClearEntries(ctx context.Context) (int, error) {
	res, err := g.db.NewDelete().Model((*leaderboardRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear leaderboard: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (g *Gateway) HasEntryForSession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return g.db.NewSelect().
		Model((*leaderboardRow)(nil)).
		Where("session_id = ?", sessionID).
		Exists(ctx)
}

// InsertAttempt stores the attempt, then its responses. A failed response
// write leaves the attempt in place and returns it with ErrResponsesIncomplete.
func (g *Gateway) InsertAttempt(ctx context.Context, attempt domain.QuizAttempt, responses []domain.QuizAttemptResponse) (domain.QuizAttempt, error) {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = g.now()
	}
	row := attemptRowFrom(attempt)
	row.ID = 0

	if _, err := g.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	stored := row.toDomain()
	if len(responses) == 0 {
		return stored, nil
	}

	rows := make([]responseRow, len(responses))
	for i, r := range responses {
		rows[i] = responseRow{
			AttemptID:       row.ID,
			QuestionText:    r.QuestionText,
			QuestionOptions: r.QuestionOptions,
			UserAnswer:      r.UserAnswer,
			CorrectAnswer:   r.CorrectAnswer,
			IsCorrect:       r.IsCorrect,
			CreatedAt:       row.CreatedAt,
		}
	}
	if _, err := g.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return stored, fmt.Errorf("insert attempt %d responses: %w: %w", row.ID, domain.ErrResponsesIncomplete, err)
	}
	return stored, nil
}

func (g *Gateway) ListAttempts(ctx context.Context, filter app.AttemptFilter) ([]domain.AttemptWithResponses, error) {
	var rows []attemptRow
	q := g.db.NewSelect().Model(&rows).Order("created_at DESC", "id DESC")
	if filter.PlayerName != "" {
		q = q.Where("LOWER(player_name) = LOWER(?)", filter.PlayerName)
	}
	if !filter.NotExpiredAt.IsZero() {
		q = q.Where("expires_at >= ?", filter.NotExpiredAt.UTC())
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}
	if len(rows) == 0 {
		return []domain.AttemptWithResponses{}, nil
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	var responses []responseRow
	err := g.db.NewSelect().
		Model(&responses).
		Where("attempt_id IN (?)", bun.In(ids)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select attempt responses: %w", err)
	}
	byAttempt := make(map[int64][]domain.QuizAttemptResponse, len(rows))
	for _, r := range responses {
		byAttempt[r.AttemptID] = append(byAttempt[r.AttemptID], r.toDomain())
	}

	out := make([]domain.AttemptWithResponses, len(rows))
	for i, r := range rows {
		resp := byAttempt[r.ID]
		if resp == nil {
			resp = []domain.QuizAttemptResponse{}
		}
		out[i] = domain.AttemptWithResponses{QuizAttempt: r.toDomain(), Responses: resp}
	}
	return out, nil
}

func (g *Gateway) CountAttemptsForSession(ctx context.Context, sessionID string) (int, error) {
	if sessionID == "" {
		return 0, nil
	}
	return g.db.NewSelect().
		Model((*attemptRow)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
}

func (g *Gateway) DeleteAttempt(ctx context.Context, id int64) error {
	return g.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*responseRow)(nil)).Where("attempt_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete attempt responses: %w", err)
		}
		res, err := tx.NewDelete().Model((*attemptRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete attempt: %w", err)
		}
		return affected(res)
	})
}

func (g *Gateway) DeleteExpiredAttempts(ctx context.Context, now time.Time) (int, error) {
	var ids []int64
	err := g.db.NewSelect().
		Model((*attemptRow)(nil)).
		Column("id").
		Where("expires_at < ?", now.UTC()).
		Scan(ctx, &ids)
	if err != nil {
		return 0, fmt.Errorf("select expired attempts: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = g.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*responseRow)(nil)).Where("attempt_id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
			return fmt.Errorf("delete expired responses: %w", err)
		}
		if _, err := tx.NewDelete().Model((*attemptRow)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
			return fmt.Errorf("delete expired attempts: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
