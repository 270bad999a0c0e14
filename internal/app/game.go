package app

import (
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/quiz"
)

// Screen is one step of the linear game flow.
type Screen string

const (
	ScreenSplash      Screen = "splash"
	ScreenRules       Screen = "rules"
	ScreenNameEntry   Screen = "nameEntry"
	ScreenQuiz        Screen = "quiz"
	ScreenResults     Screen = "results"
	ScreenLeaderboard Screen = "leaderboard"
)

// SaveState is the one-shot latch guarding the results handoff.
type SaveState int

const (
	SaveNotStarted SaveState = iota
	SaveInProgress
	SaveDone
)

// WriteStatus is the outcome of one of the two result writes.
type WriteStatus string

const (
	WriteSaved   WriteStatus = "saved"
	WritePartial WriteStatus = "partial"
	WriteSkipped WriteStatus = "skipped"
	WriteFailed  WriteStatus = "failed"
)

// SaveReport describes what the results handoff managed to store.
type SaveReport struct {
	Leaderboard WriteStatus `json:"leaderboard"`
	Attempt     WriteStatus `json:"attempt"`
	EntryID     int64       `json:"entryId,omitempty"`
	AttemptID   int64       `json:"attemptId,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Failed reports whether any write that was attempted failed.
func (r SaveReport) Failed() bool {
	return r.Leaderboard == WriteFailed || r.Attempt == WriteFailed
}

// Event is pushed to game subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ResultsView is the results screen payload: the final score and a
// per-question review.
type ResultsView struct {
	quiz.Result
	Review []domain.QuizAttemptResponse `json:"review"`
}

// GameView is a snapshot of a game for the presentation layer.
type GameView struct {
	ID                  string             `json:"id"`
	Screen              Screen             `json:"screen"`
	PlayerName          string             `json:"playerName,omitempty"`
	AttemptNumber       int                `json:"attemptNumber,omitempty"`
	LeaderboardEligible bool               `json:"leaderboardEligible"`
	Question            *quiz.QuestionView `json:"question,omitempty"`
	Result              *quiz.Result       `json:"result,omitempty"`
	Save                *SaveReport        `json:"save,omitempty"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// playthrough is one pass through the quiz. A new one is created per name
// submission; the save latch belongs to it, not to the game.
type playthrough struct {
	attemptNumber int
	eligible      bool
	runner        *quiz.Runner
	result        *quiz.Result
	save          SaveState
	report        *SaveReport
}

// Game is one player's connection to the screen flow. It outlives individual
// play-throughs so "play again" keeps the name prefill.
type Game struct {
	id        string
	sessionID string
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	screen      Screen
	playerName  string
	play        *playthrough
	closed      bool
	subscribers map[chan Event]struct{}
}

func newGame(id, sessionID string, now func() time.Time) *Game {
	return &Game{
		id:          id,
		sessionID:   sessionID,
		createdAt:   now(),
		now:         now,
		screen:      ScreenSplash,
		subscribers: make(map[chan Event]struct{}),
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// SessionID returns the device identity the game was opened with.
func (g *Game) SessionID() string { return g.sessionID }

// Screen returns the current screen.
func (g *Game) Screen() Screen {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.screen
}

// View returns a snapshot of the game.
func (g *Game) View() GameView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewLocked()
}

func (g *Game) viewLocked() GameView {
	view := GameView{
		ID:         g.id,
		Screen:     g.screen,
		PlayerName: g.playerName,
		UpdatedAt:  g.now(),
	}
	if p := g.play; p != nil {
		view.AttemptNumber = p.attemptNumber
		view.LeaderboardEligible = p.eligible
		if g.screen == ScreenQuiz && p.runner != nil {
			q := p.runner.Session().Current()
			view.Question = &q
		}
		view.Result = p.result
		view.Save = p.report
	}
	return view
}

// transition moves from one of the allowed screens to next.
func (g *Game) transition(next Screen, from ...Screen) (GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return GameView{}, domain.ErrGameNotFound
	}
	for _, s := range from {
		if g.screen == s {
			g.screen = next
			view := g.viewLocked()
			g.broadcastLocked(Event{Type: "state", Payload: view})
			return view, nil
		}
	}
	return GameView{}, domain.ErrInvalidTransition
}

func (g *Game) startPlay(name string, play *playthrough) (GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return GameView{}, domain.ErrGameNotFound
	}
	if g.screen != ScreenNameEntry {
		return GameView{}, domain.ErrInvalidTransition
	}
	g.playerName = name
	g.play = play
	g.screen = ScreenQuiz
	view := g.viewLocked()
	g.broadcastLocked(Event{Type: "state", Payload: view})
	return view, nil
}

// activeRunner returns the runner while the quiz screen is shown.
func (g *Game) activeRunner() (*quiz.Runner, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, domain.ErrGameNotFound
	}
	if g.screen != ScreenQuiz || g.play == nil || g.play.runner == nil {
		return nil, domain.ErrInvalidTransition
	}
	return g.play.runner, nil
}

// finishPlay records the result and shows the results screen. It returns
// false when play is no longer the current play-through.
func (g *Game) finishPlay(play *playthrough, result quiz.Result) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.play != play || g.screen != ScreenQuiz {
		return false
	}
	play.result = &result
	g.screen = ScreenResults
	g.broadcastLocked(Event{Type: "results", Payload: ResultsView{Result: result, Review: result.Responses(0)}})
	g.broadcastLocked(Event{Type: "state", Payload: g.viewLocked()})
	return true
}

// beginSave flips the latch from NotStarted to InProgress. Only the caller
// that wins the flip may write.
func (g *Game) beginSave(play *playthrough) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if play.save != SaveNotStarted {
		return false
	}
	play.save = SaveInProgress
	return true
}

func (g *Game) endSave(play *playthrough, report SaveReport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	play.save = SaveDone
	play.report = &report
	if g.play == play {
		g.broadcastLocked(Event{Type: "saved", Payload: report})
	}
}

// SaveState returns the latch state of the current play-through.
func (g *Game) SaveState() SaveState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.play == nil {
		return SaveNotStarted
	}
	return g.play.save
}

// resetPlay drops the current play-through and returns its runner so the
// caller can stop it outside the lock.
func (g *Game) resetPlay(next Screen, from ...Screen) (*quiz.Runner, GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, GameView{}, domain.ErrGameNotFound
	}
	allowed := false
	for _, s := range from {
		if g.screen == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, GameView{}, domain.ErrInvalidTransition
	}
	var runner *quiz.Runner
	if g.play != nil {
		runner = g.play.runner
	}
	g.play = nil
	g.screen = next
	view := g.viewLocked()
	g.broadcastLocked(Event{Type: "state", Payload: view})
	return runner, view, nil
}

func (g *Game) close() *quiz.Runner {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	for ch := range g.subscribers {
		delete(g.subscribers, ch)
		close(ch)
	}
	if g.play == nil {
		return nil
	}
	return g.play.runner
}

func (g *Game) publish(ev Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastLocked(ev)
}

func (g *Game) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	g.subscribers[ch] = struct{}{}
	ch <- Event{Type: "state", Payload: g.viewLocked()}
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) broadcastLocked(ev Event) {
	for ch := range g.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop the oldest event instead of blocking the game
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
