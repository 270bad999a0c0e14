package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/identity"
	"trivia-quiz-service/internal/metrics"
	"trivia-quiz-service/internal/quiz"
)

// GameConfig tunes the game flow. Zero values fall back to defaults.
type GameConfig struct {
	Quiz             quiz.Config
	LeaderboardLimit int
	AttemptTTL       time.Duration
	HintBudget       domain.HintBudgetPolicy
	Eligible         domain.EligibilityPolicy

	// Now and NewRand are overridable for deterministic tests.
	Now     func() time.Time
	NewRand func() *rand.Rand
}

func (c GameConfig) withDefaults() GameConfig {
	if c.Quiz.QuestionCount <= 0 {
		c.Quiz = quiz.DefaultConfig()
	}
	if c.LeaderboardLimit <= 0 {
		c.LeaderboardLimit = 20
	}
	if c.AttemptTTL <= 0 {
		c.AttemptTTL = time.Hour
	}
	if c.HintBudget == nil {
		c.HintBudget = domain.DefaultHintBudget
	}
	if c.Eligible == nil {
		c.Eligible = domain.FirstAttemptOnly
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewRand == nil {
		var seq atomic.Int64
		c.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano() + seq.Add(1)))
		}
	}
	return c
}

// GameService contains the screen flow use cases.
type GameService struct {
	games   GameRepository
	pool    QuestionPool
	gateway Gateway
	cfg     GameConfig
}

func NewGameService(games GameRepository, pool QuestionPool, gateway Gateway, cfg GameConfig) *GameService {
	return &GameService{
		games:   games,
		pool:    pool,
		gateway: gateway,
		cfg:     cfg.withDefaults(),
	}
}

// NewGame opens a game on the splash screen for the given device identity.
func (s *GameService) NewGame(_ context.Context, sessionID string) GameView {
	game := newGame(uuid.NewString(), sessionID, s.cfg.Now)
	s.games.Put(game)
	metrics.GameOpened()
	return game.View()
}

// Game returns a snapshot of an open game.
func (s *GameService) Game(_ context.Context, gameID string) (GameView, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return GameView{}, domain.ErrGameNotFound
	}
	return game.View(), nil
}

// Subscribe returns a channel that receives game events, starting with the
// current state. The caller must invoke the returned cancel function.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan Event, func(), error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrGameNotFound
	}
	ch, cancel := game.subscribe()
	return ch, cancel, nil
}

// Continue moves splash to rules and rules to name entry.
func (s *GameService) Continue(_ context.Context, gameID string) (GameView, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return GameView{}, domain.ErrGameNotFound
	}
	switch game.Screen() {
	case ScreenSplash:
		return game.transition(ScreenRules, ScreenSplash)
	default:
		return game.transition(ScreenNameEntry, ScreenRules)
	}
}

// SubmitName checks eligibility, builds the question set and starts the quiz.
func (s *GameService) SubmitName(ctx context.Context, gameID, name string) (GameView, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return GameView{}, domain.ErrGameNotFound
	}
	if game.Screen() != ScreenNameEntry {
		return GameView{}, domain.ErrInvalidTransition
	}
	name, err := domain.NormalizeName(name)
	if err != nil {
		return GameView{}, err
	}

	questions, err := s.pickQuestions(ctx)
	if err != nil {
		return GameView{}, err
	}

	attempt, confirmed := s.attemptNumber(ctx, game.SessionID())
	rnd := s.cfg.NewRand()
	session, err := quiz.NewSession(name, attempt, questions, s.cfg.HintBudget(attempt), s.cfg.Quiz, rnd)
	if err != nil {
		return GameView{}, err
	}

	play := &playthrough{
		attemptNumber: attempt,
		eligible:      confirmed && s.cfg.Eligible(attempt),
	}
	play.runner = quiz.NewRunner(session, s.cfg.Quiz, func(ev quiz.Event) {
		s.onQuizEvent(game, play, ev)
	})

	view, err := game.startPlay(name, play)
	if err != nil {
		return GameView{}, err
	}
	metrics.GameStarted(attempt)
	play.runner.Start()
	return view, nil
}

func (s *GameService) pickQuestions(ctx context.Context) ([]domain.Question, error) {
	pool, err := s.pool.ActiveQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	valid := domain.ValidQuestions(pool)
	if len(valid) < 2 {
		return nil, domain.ErrNotEnoughQuestions
	}
	return quiz.SelectQuestions(valid, s.cfg.Quiz.QuestionCount, s.cfg.NewRand()), nil
}

// attemptNumber derives the next attempt number for a device from the
// attempt log and the leaderboard. When the store cannot answer, play goes
// ahead as a first attempt but confirmed is false and nothing is posted to
// the leaderboard.
func (s *GameService) attemptNumber(ctx context.Context, sessionID string) (attempt int, confirmed bool) {
	if sessionID == "" {
		return 1, false
	}
	prior, err := s.gateway.CountAttemptsForSession(ctx, sessionID)
	if err != nil {
		log.Printf("eligibility check failed for %s: %v", sessionID, err)
		return 1, false
	}
	ranked, err := s.gateway.HasEntryForSession(ctx, sessionID)
	if err != nil {
		log.Printf("eligibility check failed for %s: %v", sessionID, err)
		return 1, false
	}
	if ranked && prior < 1 {
		prior = 1
	}
	return prior + 1, true
}

// Answer locks the current question with option.
func (s *GameService) Answer(_ context.Context, gameID string, option int) (quiz.Outcome, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return quiz.Outcome{}, domain.ErrGameNotFound
	}
	runner, err := game.activeRunner()
	if err != nil {
		return quiz.Outcome{}, err
	}
	return runner.Select(option)
}

// Hint activates a hint on the current question.
func (s *GameService) Hint(_ context.Context, gameID string) (quiz.Hint, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return quiz.Hint{}, domain.ErrGameNotFound
	}
	runner, err := game.activeRunner()
	if err != nil {
		return quiz.Hint{}, err
	}
	return runner.Hint()
}

// ShowLeaderboard moves results to the leaderboard screen and returns the
// ranked top entries. The screen changes even when the read fails.
func (s *GameService) ShowLeaderboard(ctx context.Context, gameID string) ([]domain.RankedEntry, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	if _, err := game.transition(ScreenLeaderboard, ScreenResults); err != nil {
		return nil, err
	}
	entries, err := s.Leaderboard(ctx, s.cfg.LeaderboardLimit)
	if err != nil {
		return nil, err
	}
	game.publish(Event{Type: "leaderboard", Payload: entries})
	return entries, nil
}

// BackToResults returns from the leaderboard screen.
func (s *GameService) BackToResults(_ context.Context, gameID string) (GameView, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return GameView{}, domain.ErrGameNotFound
	}
	return game.transition(ScreenResults, ScreenLeaderboard)
}

// PlayAgain discards the finished play-through and returns to name entry with
// the previous name kept as a prefill.
func (s *GameService) PlayAgain(_ context.Context, gameID string) (GameView, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return GameView{}, domain.ErrGameNotFound
	}
	runner, view, err := game.resetPlay(ScreenNameEntry, ScreenResults, ScreenLeaderboard)
	if err != nil {
		return GameView{}, err
	}
	if runner != nil {
		runner.Stop()
	}
	return view, nil
}

// Close stops the game and forgets it.
func (s *GameService) Close(_ context.Context, gameID string) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return
	}
	if runner := game.close(); runner != nil {
		runner.Stop()
	}
	s.games.Delete(gameID)
	metrics.GameClosed()
}

// Leaderboard returns the ranked top entries.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]domain.RankedEntry, error) {
	entries, err := s.gateway.TopEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	domain.SortLeaderboard(entries)
	return domain.Rank(entries), nil
}

// DeleteOwnEntry removes a leaderboard entry posted from the same device.
func (s *GameService) DeleteOwnEntry(ctx context.Context, sessionID string, entryID int64) error {
	entry, err := s.gateway.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if !identity.Owns(sessionID, entry.SessionID) {
		return domain.ErrForbidden
	}
	return s.gateway.DeleteEntry(ctx, entryID)
}

func (s *GameService) onQuizEvent(game *Game, play *playthrough, ev quiz.Event) {
	switch ev.Type {
	case quiz.EventLocked:
		metrics.AnswerLocked(ev.Outcome.Correct, ev.Outcome.TimedOut)
		game.publish(Event{Type: string(ev.Type), Payload: ev.Outcome})
	case quiz.EventHint:
		metrics.HintUsed(string(ev.Hint.Kind))
		game.publish(Event{Type: string(ev.Type), Payload: ev.Hint})
	case quiz.EventQuestion:
		game.publish(Event{Type: string(ev.Type), Payload: ev.Question})
	case quiz.EventFinished:
		if game.finishPlay(play, *ev.Result) {
			go s.saveResult(game, play, *ev.Result)
		}
	default:
		game.publish(Event{Type: string(ev.Type), Payload: ev})
	}
}
