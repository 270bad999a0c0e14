package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// GameStore is a Redis-aware implementation of app.GameRepository.
// Games hold live timers and subscribers, so they stay in a local map; Redis
// carries a liveness marker per game (quiz:game:{id} -> session id) that
// other instances and operators can inspect.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]*app.Game
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (s *GameStore) Put(game *app.Game) {
	s.mu.Lock()
	s.games[game.ID()] = game
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(game.ID()), game.SessionID(), s.ttl).Err()
}

func (s *GameStore) Get(id string) (*app.Game, bool) {
	s.mu.RLock()
	game, ok := s.games[id]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(id), s.ttl).Err()
	}
	return game, ok
}

func (s *GameStore) Delete(id string) {
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *GameStore) key(id string) string {
	return "quiz:game:" + id
}
