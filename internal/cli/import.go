package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
)

// NewImportCmd bulk-loads questions from a seed file, skipping ones already stored.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		file       string
		statusOnly bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from a YAML or JSON seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Seed.Questions
			}
			if file == "" {
				return fmt.Errorf("no question file given (use --file or seed.questions)")
			}
			return runImport(cmd.Context(), cfg, file, statusOnly)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question file (defaults to seed.questions)")
	cmd.Flags().BoolVar(&statusOnly, "status", false, "only report how much of the file is already imported")
	return cmd
}

func runImport(ctx context.Context, cfg config.Config, file string, statusOnly bool) error {
	questions, err := config.LoadQuestions(file)
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	pool, closePool := sharedQuestionPool(cfg, backend.loader)
	defer closePool()
	admin := app.NewAdminService(backend.gateway, pool, 0)

	if statusOnly {
		status, err := admin.ImportStatus(ctx, questions)
		if err != nil {
			return err
		}
		log.Printf("import status: %d in file, %d in database, %d missing (%d%% imported)",
			status.TotalInFile, status.TotalInDatabase, status.Missing, status.Percentage)
		return nil
	}

	result, err := admin.ImportQuestions(ctx, questions)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		log.Printf("import: %s", msg)
	}
	log.Printf("import finished: %d imported, %d skipped, %d failed", result.Success, result.Skipped, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d questions failed to import", result.Failed)
	}
	return nil
}
