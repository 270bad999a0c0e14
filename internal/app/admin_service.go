package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"trivia-quiz-service/internal/domain"
)

// AdminService backs the admin dashboard: question content, attempt
// history and leaderboard moderation.
type AdminService struct {
	gateway Gateway
	pool    QuestionPool
	now     func() time.Time
	limit   int
}

func NewAdminService(gateway Gateway, pool QuestionPool, leaderboardLimit int) *AdminService {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 50
	}
	return &AdminService{gateway: gateway, pool: pool, now: time.Now, limit: leaderboardLimit}
}

// ListQuestions returns the active questions.
func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.gateway.ActiveQuestions(ctx)
}

func (s *AdminService) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	return s.gateway.GetQuestion(ctx, id)
}

// CreateQuestion validates and stores a question.
func (s *AdminService) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := prepareQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	created, err := s.gateway.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateQuestion validates and replaces a question.
func (s *AdminService) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := prepareQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	if err := s.gateway.UpdateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx)
	return q, nil
}

// DeleteQuestion soft-deletes a question.
func (s *AdminService) DeleteQuestion(ctx context.Context, id int64) error {
	if err := s.gateway.DeactivateQuestion(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// prepareQuestion validates the submitted form and normalizes it.
func prepareQuestion(q domain.Question) (domain.Question, error) {
	if err := domain.ValidateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	q = domain.NormalizeQuestion(q)
	if q.CorrectAnswer < 0 {
		return domain.Question{}, &domain.ValidationError{Field: "correctAnswer", Message: "must point at a non-empty option"}
	}
	return q, nil
}

func (s *AdminService) invalidate(ctx context.Context) {
	if s.pool == nil {
		return
	}
	if err := s.pool.Invalidate(ctx); err != nil {
		log.Printf("question pool invalidate failed: %v", err)
	}
}

func questionKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ImportQuestions adds every question whose text is not already active.
// Duplicates are matched on trimmed, case-insensitive text, including
// duplicates within questions itself.
func (s *AdminService) ImportQuestions(ctx context.Context, questions []domain.Question) (domain.ImportResult, error) {
	result := domain.ImportResult{Errors: []string{}}

	existing, err := s.gateway.ActiveQuestions(ctx)
	if err != nil {
		return result, fmt.Errorf("load existing questions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[questionKey(q.Text)] = true
	}

	for i, q := range questions {
		key := questionKey(q.Text)
		if seen[key] {
			result.Skipped++
			continue
		}
		prepared, err := prepareQuestion(q)
		if err == nil {
			_, err = s.gateway.CreateQuestion(ctx, prepared)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		result.Success++
		seen[key] = true
	}

	if result.Success > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}

// ImportStatus reports how many of questions are already active.
func (s *AdminService) ImportStatus(ctx context.Context, questions []domain.Question) (domain.ImportStatus, error) {
	existing, err := s.gateway.ActiveQuestions(ctx)
	if err != nil {
		return domain.ImportStatus{TotalInFile: len(questions), Missing: len(questions)}, fmt.Errorf("load existing questions: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, q := range existing {
		seen[questionKey(q.Text)] = true
	}
	missing := 0
	for _, q := range questions {
		if !seen[questionKey(q.Text)] {
			missing++
		}
	}
	return domain.ImportStatus{
		TotalInFile:     len(questions),
		TotalInDatabase: len(existing),
		Missing:         missing,
		Percentage:      domain.Percentage(len(questions)-missing, len(questions)),
	}, nil
}

// ListAttempts removes expired attempts and returns the rest, newest first.
func (s *AdminService) ListAttempts(ctx context.Context, playerName string) ([]domain.AttemptWithResponses, error) {
	if _, err := s.CleanupExpiredAttempts(ctx); err != nil {
		log.Printf("attempt cleanup failed: %v", err)
	}
	return s.gateway.ListAttempts(ctx, AttemptFilter{
		PlayerName:   strings.TrimSpace(playerName),
		NotExpiredAt: s.now().UTC(),
	})
}

func (s *AdminService) DeleteAttempt(ctx context.Context, id int64) error {
	return s.gateway.DeleteAttempt(ctx, id)
}

// CleanupExpiredAttempts hard-deletes attempts past their expiry and returns
// how many were removed.
func (s *AdminService) CleanupExpiredAttempts(ctx context.Context) (int, error) {
	return s.gateway.DeleteExpiredAttempts(ctx, s.now().UTC())
}

// Leaderboard returns the ranked entries shown on the admin page. A non-empty
// search keeps entries whose name, phone number or score contains it; ranks
// are assigned before filtering so they match the public board.
func (s *AdminService) Leaderboard(ctx context.Context, search string) ([]domain.RankedEntry, error) {
	entries, err := s.gateway.TopEntries(ctx, s.limit)
	if err != nil {
		return nil, err
	}
	domain.SortLeaderboard(entries)
	ranked := domain.Rank(entries)
	if strings.TrimSpace(search) == "" {
		return ranked, nil
	}
	out := make([]domain.RankedEntry, 0, len(ranked))
	for _, r := range ranked {
		if domain.MatchesSearch(r.LeaderboardEntry, search) {
			out = append(out, r)
		}
	}
	return out, nil
}

// DeleteEntry removes any leaderboard entry.
func (s *AdminService) DeleteEntry(ctx context.Context, id int64) error {
	return s.gateway.DeleteEntry(ctx, id)
}

// ClearLeaderboard removes every leaderboard entry.
func (s *AdminService) ClearLeaderboard(ctx context.Context) (int, error) {
	return s.gateway.ClearEntries(ctx)
}

// Stats gathers the dashboard counters concurrently.
func (s *AdminService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var (
		entries   []domain.LeaderboardEntry
		questions []domain.Question
		attempts  []domain.AttemptWithResponses
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.gateway.TopEntries(gctx, 0)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = s.gateway.ActiveQuestions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.gateway.ListAttempts(gctx, AttemptFilter{NotExpiredAt: s.now().UTC()})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		TotalEntries:   len(entries),
		TotalQuestions: len(questions),
		TotalAttempts:  len(attempts),
	}
	if len(entries) > 0 {
		sum := 0
		for _, e := range entries {
			if e.PhoneNumber != "" {
				stats.WithPhone++
			}
			sum += e.Percentage
			if e.Percentage > stats.TopScore {
				stats.TopScore = e.Percentage
			}
		}
		stats.AverageScore = domain.Percentage(sum, len(entries)*100)
	}
	return stats, nil
}
