package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// QuestionLoader fetches the active question pool from a backing store.
type QuestionLoader interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

// LoaderFunc adapts a function to QuestionLoader.
type LoaderFunc func(ctx context.Context) ([]domain.Question, error)

func (f LoaderFunc) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	return f(ctx)
}

// QuestionPool caches the active pool with a TTL to avoid a store round trip per game.
type QuestionPool struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	rnd       *rand.Rand
	questions []domain.Question
	expiresAt time.Time
	loaded    bool
}

func NewQuestionPool(loader QuestionLoader, ttl time.Duration) *QuestionPool {
	return &QuestionPool{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *QuestionPool) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := p.cached(p.clock()); ok {
		return questions, nil
	}

	result, err, _ := p.sf.Do("active", func() (interface{}, error) {
		now := p.clock()
		if questions, ok := p.cached(now); ok {
			return questions, nil
		}

		questions, err := p.loader.ActiveQuestions(ctx)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.questions = questions
		p.expiresAt = now.Add(p.ttlWithJitterLocked())
		p.loaded = true
		p.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

// Invalidate drops the cached pool so the next read hits the loader.
func (p *QuestionPool) Invalidate(_ context.Context) error {
	p.mu.Lock()
	p.loaded = false
	p.questions = nil
	p.mu.Unlock()
	return nil
}

func (p *QuestionPool) cached(now time.Time) ([]domain.Question, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded || !p.expiresAt.After(now) {
		return nil, false
	}
	return copyQuestions(p.questions), true
}

func (p *QuestionPool) ttlWithJitterLocked() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}

func copyQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
