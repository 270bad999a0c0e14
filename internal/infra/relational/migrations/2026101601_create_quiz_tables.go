package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type question20261016 struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Text          string    `bun:"text,notnull"`
	Options       []string  `bun:"options,notnull"`
	CorrectAnswer int       `bun:"correct_answer,notnull"`
	IsActive      bool      `bun:"is_active,notnull,default:true"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

type leaderboard20261016 struct {
	bun.BaseModel `bun:"table:leaderboard"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,notnull"`
	PhoneNumber    string    `bun:"phone_number,nullzero"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     int       `bun:"percentage,notnull"`
	SessionID      string    `bun:"session_id,nullzero"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

type attempt20261016 struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID             int64     `bun:"id,pk,autoincrement"`
	PlayerName     string    `bun:"player_name,notnull"`
	SessionID      string    `bun:"session_id,nullzero"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	Percentage     int       `bun:"percentage,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
	ExpiresAt      time.Time `bun:"expires_at,notnull"`
}

type response20261016 struct {
	bun.BaseModel `bun:"table:quiz_attempt_responses"`

	ID              int64     `bun:"id,pk,autoincrement"`
	AttemptID       int64     `bun:"attempt_id,notnull"`
	QuestionText    string    `bun:"question_text,notnull"`
	QuestionOptions []string  `bun:"question_options,notnull"`
	UserAnswer      *int      `bun:"user_answer"`
	CorrectAnswer   int       `bun:"correct_answer,notnull"`
	IsCorrect       bool      `bun:"is_correct,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

func init() {
	tables := []interface{}{
		(*question20261016)(nil),
		(*leaderboard20261016)(nil),
		(*attempt20261016)(nil),
		(*response20261016)(nil),
	}

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range tables {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("create table: %w", err)
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for i := len(tables) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
					return fmt.Errorf("drop table: %w", err)
				}
			}
			return nil
		},
	)
}
