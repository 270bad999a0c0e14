package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/relational"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the postgres or sqlite driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	var driver, dsn string
	switch cfg.Driver() {
	case config.DriverPostgres:
		driver, dsn = relational.DriverPostgres, cfg.Postgres.URL
	case config.DriverSQLite:
		driver, dsn = relational.DriverSQLite, cfg.SQLitePath()
	default:
		return fmt.Errorf("driver %q has no migrations", cfg.Driver())
	}

	db, err := relational.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return relational.Migrate(ctx, db)
}
