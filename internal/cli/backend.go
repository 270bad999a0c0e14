package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/noop"
	pgloader "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/infra/relational"
	supabasegw "trivia-quiz-service/internal/infra/supabase"
)

// backend bundles the storage pieces selected by configuration.
type backend struct {
	gateway app.Gateway
	loader  memory.QuestionLoader
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend connects the configured driver. SQL drivers are migrated on
// open. A hosted backend without credentials degrades to the noop gateway.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	switch cfg.Driver() {
	case config.DriverMemory:
		seed, err := seedQuestions(cfg)
		if err != nil {
			return nil, err
		}
		gw := memory.NewGateway(seed)
		b.gateway, b.loader = gw, gw
		log.Printf("backend: in-memory store with %d seeded questions", len(seed))

	case config.DriverPostgres:
		db, err := openSQL(ctx, relational.DriverPostgres, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		b.gateway = relational.NewGateway(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect pgx pool: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.loader = pgloader.NewQuestionLoader(pool)
		log.Printf("backend: postgres")

	case config.DriverSQLite:
		path := cfg.SQLitePath()
		db, err := openSQL(ctx, relational.DriverSQLite, path)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		gw := relational.NewGateway(db)
		b.gateway, b.loader = gw, gw
		log.Printf("backend: sqlite at %s", path)

	case config.DriverSupabase:
		if !cfg.BackendConfigured() {
			log.Printf("warning: backend url or access token missing or malformed; scores will not be saved")
			gw := noop.NewGateway("")
			b.gateway, b.loader = gw, gw
			break
		}
		gw, err := supabasegw.NewGateway(cfg.Backend.URL, cfg.Backend.AccessToken)
		if err != nil {
			return nil, err
		}
		b.gateway, b.loader = gw, gw
		log.Printf("backend: supabase at %s", cfg.Backend.URL)

	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Driver())
	}
	return b, nil
}

func openSQL(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	db, err := relational.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := relational.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return db, nil
}

func seedQuestions(cfg config.Config) ([]domain.Question, error) {
	if cfg.Seed.Questions == "" {
		return nil, nil
	}
	questions, err := config.LoadQuestions(cfg.Seed.Questions)
	if err != nil {
		return nil, fmt.Errorf("load seed questions: %w", err)
	}
	return questions, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newQuestionPool prefers the shared Redis cache when Redis is configured.
func newQuestionPool(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) app.QuestionPool {
	if client != nil {
		return redisinfra.NewQuestionPool(client, loader, ttl)
	}
	return memory.NewQuestionPool(loader, ttl)
}

// sharedQuestionPool returns the Redis pool cache that running servers read,
// so one-off commands can invalidate it after writing questions. Without
// Redis there is no shared cache and the returned pool is nil.
func sharedQuestionPool(cfg config.Config, loader memory.QuestionLoader) (app.QuestionPool, func()) {
	client := newRedisClient(cfg)
	if client == nil {
		return nil, func() {}
	}
	pool := redisinfra.NewQuestionPool(client, loader, config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute))
	return pool, func() { _ = client.Close() }
}
