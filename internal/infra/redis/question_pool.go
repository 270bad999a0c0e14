package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// ActiveQuestionsKey holds the JSON-encoded active pool.
const ActiveQuestionsKey = "quiz:questions:active"

// QuestionLoader fetches the active question pool from the system of record.
type QuestionLoader interface {
	ActiveQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionPool caches the active pool in Redis so every instance shares one
// copy, and falls back to the loader on a miss. A broken cache never blocks
// play: read errors fall through to the loader and write errors are logged.
type QuestionPool struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionPool(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionPool {
	return &QuestionPool{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *QuestionPool) ActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := p.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := p.sf.Do(ActiveQuestionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := p.cached(ctx); ok {
			return questions, nil
		}

		questions, err := p.loader.ActiveQuestions(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("encode question pool: %w", err)
		}
		if err := p.client.Set(ctx, ActiveQuestionsKey, raw, p.ttlWithJitter()).Err(); err != nil {
			log.Printf("question pool: cache write failed: %v", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

// Invalidate drops the cached pool so the next read reloads it.
func (p *QuestionPool) Invalidate(ctx context.Context) error {
	return p.client.Del(ctx, ActiveQuestionsKey).Err()
}

func (p *QuestionPool) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := p.client.Get(ctx, ActiveQuestionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("question pool: cache read failed: %v", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		log.Printf("question pool: dropping undecodable cache entry: %v", err)
		return nil, false
	}
	return questions, true
}

func (p *QuestionPool) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	jitterMax := int64(p.ttl) / 10
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
