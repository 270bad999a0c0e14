package quiz

import (
	"context"
	"sync"
	"time"
)

// EventType names a signal emitted for the presentation layer.
type EventType string

const (
	EventQuestion EventType = "question"
	EventTick     EventType = "tick"
	EventWarning  EventType = "warning"
	EventLocked   EventType = "locked"
	EventHint     EventType = "hint"
	EventGlowEnd  EventType = "glowEnd"
	EventFinished EventType = "finished"
)

// Event is emitted by a Runner. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType     `json:"type"`
	Index    int           `json:"index"`
	TimeLeft int           `json:"timeLeft,omitempty"`
	Question *QuestionView `json:"question,omitempty"`
	Outcome  *Outcome      `json:"outcome,omitempty"`
	Hint     *Hint         `json:"hint,omitempty"`
	Result   *Result       `json:"result,omitempty"`
}

// Runner drives a Session in real time: one countdown per question, the
// reveal delay after a lock, and the hint glow window.
// emit is called from runner goroutines and must not block.
type Runner struct {
	session *Session
	cfg     Config
	emit    func(Event)

	mu      sync.Mutex
	cancel  context.CancelFunc
	timers  []*time.Timer
	started bool
	stopped bool
}

func NewRunner(session *Session, cfg Config, emit func(Event)) *Runner {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Runner{session: session, cfg: cfg, emit: emit}
}

// Session returns the driven session.
func (r *Runner) Session() *Session {
	return r.session
}

// Start announces the first question and arms its countdown.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.started = true
	view := r.session.Current()
	r.armLocked(view.Index)
	r.mu.Unlock()

	r.emit(Event{Type: EventQuestion, Index: view.Index, TimeLeft: view.TimeLeft, Question: &view})
}

// Select answers the current question.
func (r *Runner) Select(option int) (Outcome, error) {
	out, err := r.session.Select(r.session.Index(), option)
	if err != nil {
		return Outcome{}, err
	}
	r.onLocked(out)
	return out, nil
}

// Hint activates a hint on the current question.
func (r *Runner) Hint() (Hint, error) {
	hint, err := r.session.UseHint(r.session.Index())
	if err != nil {
		return Hint{}, err
	}
	r.emit(Event{Type: EventHint, Index: hint.Index, Hint: &hint})
	if hint.Kind == HintGlow {
		index := hint.Index
		r.after(r.cfg.HintWindow, func() {
			if r.session.EndGlow(index) {
				r.emit(Event{Type: EventGlowEnd, Index: index})
			}
		})
	}
	return hint, nil
}

// Stop cancels the countdown and every pending timer. It is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.disarmLocked()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}

func (r *Runner) armLocked(index int) {
	r.disarmLocked()
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.countdown(ctx, index)
}

func (r *Runner) disarmLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Runner) countdown(ctx context.Context, index int) {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
		left, out, ok := r.session.Tick(index)
		if !ok {
			return
		}
		if out != nil {
			r.emit(Event{Type: EventTick, Index: index})
			r.onLocked(*out)
			return
		}
		r.emit(Event{Type: EventTick, Index: index, TimeLeft: left})
		if r.cfg.isWarning(left) {
			r.emit(Event{Type: EventWarning, Index: index, TimeLeft: left})
		}
	}
}

func (r *Runner) onLocked(out Outcome) {
	r.mu.Lock()
	if r.session.Index() == out.Index {
		r.disarmLocked()
	}
	r.mu.Unlock()

	r.emit(Event{Type: EventLocked, Index: out.Index, Outcome: &out})
	r.after(r.cfg.RevealDelay, func() { r.advance(out.Index) })
}

func (r *Runner) advance(index int) {
	finished, ok := r.session.Advance(index)
	if !ok {
		return
	}
	if finished {
		result := r.session.Result()
		r.emit(Event{Type: EventFinished, Index: index, Result: &result})
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	view := r.session.Current()
	r.armLocked(view.Index)
	r.mu.Unlock()

	r.emit(Event{Type: EventQuestion, Index: view.Index, TimeLeft: view.TimeLeft, Question: &view})
}

func (r *Runner) after(d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.timers = append(r.timers, time.AfterFunc(d, func() {
		r.mu.Lock()
		stopped := r.stopped
		r.mu.Unlock()
		if !stopped {
			fn()
		}
	}))
}
