package app

import (
	"context"
	"errors"
	"log"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/metrics"
	"trivia-quiz-service/internal/quiz"
)

const (
	saveFailedMessage  = "Failed to save your results. You can still view the leaderboard or play again."
	savePartialMessage = "Your score was saved, but the answer review could not be stored."
)

// saveResult runs the results handoff for play at most once. The leaderboard
// write and the attempt log write are independent: a failure of one never
// prevents the other.
func (s *GameService) saveResult(game *Game, play *playthrough, result quiz.Result) SaveReport {
	if !game.beginSave(play) {
		return SaveReport{}
	}

	ctx := context.Background()
	now := s.cfg.Now().UTC()
	report := SaveReport{Leaderboard: WriteSkipped}

	if play.eligible {
		entry, err := s.gateway.InsertEntry(ctx, domain.LeaderboardEntry{
			Name:           result.PlayerName,
			Score:          result.Score,
			TotalQuestions: result.Total,
			Percentage:     result.Percentage,
			Timestamp:      now,
			SessionID:      game.SessionID(),
		})
		if err != nil {
			logWriteError("leaderboard", err)
			report.Leaderboard = WriteFailed
		} else {
			report.Leaderboard = WriteSaved
			report.EntryID = entry.ID
		}
	}
	metrics.ResultWrite("leaderboard", string(report.Leaderboard))

	attempt, err := s.gateway.InsertAttempt(ctx, domain.QuizAttempt{
		PlayerName:     result.PlayerName,
		SessionID:      game.SessionID(),
		Score:          result.Score,
		TotalQuestions: result.Total,
		Percentage:     result.Percentage,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.AttemptTTL),
	}, result.Responses(0))
	switch {
	case err == nil:
		report.Attempt = WriteSaved
		report.AttemptID = attempt.ID
	case errors.Is(err, domain.ErrResponsesIncomplete) && attempt.ID != 0:
		log.Printf("attempt log: attempt %d saved, responses failed: %v", attempt.ID, err)
		report.Attempt = WritePartial
		report.AttemptID = attempt.ID
	default:
		logWriteError("attempt log", err)
		report.Attempt = WriteFailed
	}
	metrics.ResultWrite("attempt", string(report.Attempt))

	switch {
	case report.Failed():
		report.Message = saveFailedMessage
	case report.Attempt == WritePartial:
		report.Message = savePartialMessage
	}
	game.endSave(play, report)
	return report
}

func logWriteError(target string, err error) {
	if errors.Is(err, domain.ErrNotConfigured) {
		log.Printf("%s write skipped: backend not configured (set BACKEND_URL and BACKEND_ACCESS_TOKEN)", target)
		return
	}
	log.Printf("%s write failed: %v (check that the tables exist and the access policy allows inserts)", target, err)
}
