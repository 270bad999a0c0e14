package quiz

import (
	"math/rand"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// HintKind tells which assistance a hint activation produced.
type HintKind string

const (
	HintEliminate HintKind = "eliminate"
	HintGlow      HintKind = "glow"
)

// Hint is the result of one hint activation.
type Hint struct {
	Index          int      `json:"index"`
	Kind           HintKind `json:"kind"`
	Eliminated     []int    `json:"eliminated,omitempty"`
	CorrectAnswer  *int     `json:"correctAnswer,omitempty"`
	HintsRemaining int      `json:"hintsRemaining"`
}

// Outcome describes how a question was locked.
type Outcome struct {
	Index         int  `json:"index"`
	Answer        int  `json:"answer"`
	Correct       bool `json:"correct"`
	CorrectAnswer int  `json:"correctAnswer"`
	TimedOut      bool `json:"timedOut"`
	Last          bool `json:"last"`
	Score         int  `json:"score"`
}

// QuestionView is what a player may see of the current question.
// The correct answer is only revealed once the question is locked or glowing.
type QuestionView struct {
	Index          int      `json:"index"`
	Total          int      `json:"total"`
	AttemptNumber  int      `json:"attemptNumber"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	Eliminated     []int    `json:"eliminated"`
	TimeLeft       int      `json:"timeLeft"`
	Locked         bool     `json:"locked"`
	TimedOut       bool     `json:"timedOut"`
	HintUsed       bool     `json:"hintUsed"`
	HintsRemaining int      `json:"hintsRemaining"`
	HintAvailable  bool     `json:"hintAvailable"`
	Glowing        bool     `json:"glowing"`
	Score          int      `json:"score"`
	SelectedAnswer *int     `json:"selectedAnswer,omitempty"`
	CorrectAnswer  *int     `json:"correctAnswer,omitempty"`
}

// Result is the canonical outcome of a finished session.
type Result struct {
	PlayerName    string            `json:"playerName"`
	AttemptNumber int               `json:"attemptNumber"`
	Questions     []domain.Question `json:"-"`
	Answers       []*int            `json:"answers"`
	Score         int               `json:"score"`
	Total         int               `json:"totalQuestions"`
	Percentage    int               `json:"percentage"`
}

// Responses builds the attempt log rows for this result.
func (r Result) Responses(attemptID int64) []domain.QuizAttemptResponse {
	return domain.BuildResponses(attemptID, r.Questions, r.Answers)
}

type questionState struct {
	timeLeft   int
	locked     bool
	timedOut   bool
	hintUsed   bool
	glowing    bool
	eliminated map[int]bool
}

// Session is one player's pass through a fixed question set.
// All methods are safe for concurrent use; the countdown and player input
// race on the same lock and the first to lock a question wins.
type Session struct {
	mu sync.Mutex

	playerName     string
	attemptNumber  int
	questions      []domain.Question
	answers        []*int
	index          int
	score          int
	hintsRemaining int
	finished       bool
	state          questionState

	cfg Config
	rnd *rand.Rand
}

// NewSession starts a session on the first question.
func NewSession(playerName string, attemptNumber int, questions []domain.Question, hints int, cfg Config, rnd *rand.Rand) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNotEnoughQuestions
	}
	if attemptNumber < 1 {
		attemptNumber = 1
	}
	s := &Session{
		playerName:     playerName,
		attemptNumber:  attemptNumber,
		questions:      append([]domain.Question(nil), questions...),
		answers:        make([]*int, len(questions)),
		hintsRemaining: max(0, hints),
		cfg:            cfg,
		rnd:            rnd,
	}
	s.resetLocked()
	return s, nil
}

func (s *Session) resetLocked() {
	s.state = questionState{
		timeLeft:   s.cfg.TimerSeconds,
		eliminated: make(map[int]bool),
	}
}

// PlayerName returns the name the session was started with.
func (s *Session) PlayerName() string { return s.playerName }

// AttemptNumber returns the 1-based attempt number.
func (s *Session) AttemptNumber() int { return s.attemptNumber }

// Index returns the current question index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Finished reports whether the last question has been advanced past.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Current returns the player's view of the current question.
func (s *Session) Current() QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() QuestionView {
	q := s.questions[s.index]
	view := QuestionView{
		Index:          s.index,
		Total:          len(s.questions),
		AttemptNumber:  s.attemptNumber,
		Text:           q.Text,
		Options:        append([]string(nil), q.Options...),
		Eliminated:     s.eliminatedLocked(),
		TimeLeft:       s.state.timeLeft,
		Locked:         s.state.locked,
		TimedOut:       s.state.timedOut,
		HintUsed:       s.state.hintUsed,
		HintsRemaining: s.hintsRemaining,
		HintAvailable:  s.hintAvailableLocked(),
		Glowing:        s.state.glowing,
		Score:          s.score,
	}
	if s.state.locked {
		view.SelectedAnswer = domain.AnswerOf(*s.answers[s.index])
	}
	if s.state.locked || s.state.glowing {
		view.CorrectAnswer = domain.AnswerOf(q.CorrectAnswer)
	}
	return view
}

func (s *Session) eliminatedLocked() []int {
	out := make([]int, 0, len(s.state.eliminated))
	for i := range s.state.eliminated {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (s *Session) hintAvailableLocked() bool {
	return !s.finished &&
		s.attemptNumber > 1 &&
		s.hintsRemaining > 0 &&
		!s.state.hintUsed &&
		!s.state.locked
}

// Select records option for question index and locks it.
func (s *Session) Select(index, option int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return Outcome{}, domain.ErrSessionFinished
	}
	if index < s.index || (index == s.index && s.state.locked) {
		return Outcome{}, domain.ErrQuestionLocked
	}
	if index > s.index {
		return Outcome{}, domain.ErrInvalidOption
	}
	q := s.questions[s.index]
	if option < 0 || option >= len(q.Options) || s.state.eliminated[option] {
		return Outcome{}, domain.ErrInvalidOption
	}
	return s.lockLocked(option, false), nil
}

// Tick advances the countdown of question index by one step. ok is false when
// the tick is stale (question changed or already locked). A tick that reaches
// zero locks the question with the timeout sentinel and returns its outcome.
func (s *Session) Tick(index int) (left int, outcome *Outcome, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || index != s.index || s.state.locked {
		return 0, nil, false
	}
	if s.state.timeLeft > 0 {
		s.state.timeLeft--
	}
	if s.state.timeLeft == 0 {
		out := s.lockLocked(domain.AnswerTimeout, true)
		return 0, &out, true
	}
	return s.state.timeLeft, nil, true
}

func (s *Session) lockLocked(answer int, timedOut bool) Outcome {
	q := s.questions[s.index]
	s.answers[s.index] = domain.AnswerOf(answer)
	s.state.locked = true
	s.state.timedOut = timedOut
	s.state.glowing = false
	correct := domain.IsCorrect(s.answers[s.index], q.CorrectAnswer)
	if correct {
		s.score++
	}
	return Outcome{
		Index:         s.index,
		Answer:        answer,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		TimedOut:      timedOut,
		Last:          s.index == len(s.questions)-1,
		Score:         s.score,
	}
}

// UseHint activates the single hint allowed on question index.
func (s *Session) UseHint(index int) (Hint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index != s.index {
		return Hint{}, domain.ErrHintUnavailable
	}
	if s.state.locked {
		return Hint{}, domain.ErrQuestionLocked
	}
	if !s.hintAvailableLocked() {
		return Hint{}, domain.ErrHintUnavailable
	}

	s.hintsRemaining--
	s.state.hintUsed = true

	q := s.questions[s.index]
	hint := Hint{Index: s.index, HintsRemaining: s.hintsRemaining}

	wrong := make([]int, 0, len(q.Options))
	for i := range q.Options {
		if i != q.CorrectAnswer && !s.state.eliminated[i] {
			wrong = append(wrong, i)
		}
	}

	if s.rnd.Float64() < s.cfg.EliminateChance && len(wrong) > 0 {
		n := min(domain.EliminationCount(s.attemptNumber), len(wrong))
		s.rnd.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
		picked := append([]int(nil), wrong[:n]...)
		sort.Ints(picked)
		for _, i := range picked {
			s.state.eliminated[i] = true
		}
		hint.Kind = HintEliminate
		hint.Eliminated = picked
		return hint, nil
	}

	s.state.glowing = true
	hint.Kind = HintGlow
	hint.CorrectAnswer = domain.AnswerOf(q.CorrectAnswer)
	return hint, nil
}

// EndGlow clears the glow marker of question index. It reports whether the
// marker was still set.
func (s *Session) EndGlow(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != s.index || !s.state.glowing {
		return false
	}
	s.state.glowing = false
	return true
}

// Advance moves past locked question index. It returns finished=true when
// index was the last question; ok is false for stale or unlocked indexes.
func (s *Session) Advance(index int) (finished bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || index != s.index || !s.state.locked {
		return s.finished, false
	}
	if s.index == len(s.questions)-1 {
		s.finished = true
		return true, true
	}
	s.index++
	s.resetLocked()
	return false, true
}

// RunningScore is the counter maintained while playing.
func (s *Session) RunningScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Result re-derives the score from the recorded answers.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]*int, len(s.answers))
	for i, a := range s.answers {
		if a != nil {
			answers[i] = domain.AnswerOf(*a)
		}
	}
	score := domain.Score(s.questions, answers)
	return Result{
		PlayerName:    s.playerName,
		AttemptNumber: s.attemptNumber,
		Questions:     append([]domain.Question(nil), s.questions...),
		Answers:       answers,
		Score:         score,
		Total:         len(s.questions),
		Percentage:    domain.Percentage(score, len(s.questions)),
	}
}
