package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

var lookupIndexes = []struct {
	name   string
	table  string
	column string
}{
	{"idx_leaderboard_session_id", "leaderboard", "session_id"},
	{"idx_quiz_attempts_session_id", "quiz_attempts", "session_id"},
	{"idx_quiz_attempts_expires_at", "quiz_attempts", "expires_at"},
	{"idx_quiz_attempt_responses_attempt_id", "quiz_attempt_responses", "attempt_id"},
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, idx := range lookupIndexes {
				_, err := db.NewCreateIndex().
					Table(idx.table).
					Index(idx.name).
					Column(idx.column).
					IfNotExists().
					Exec(ctx)
				if err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, idx := range lookupIndexes {
				if _, err := db.NewDropIndex().Index(idx.name).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
