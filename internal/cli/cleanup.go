package cli

import (
	"log"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
)

// NewCleanupCmd deletes attempt log rows past their expiry.
func NewCleanupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired quiz attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			backend, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			n, err := app.NewAdminService(backend.gateway, nil, 0).CleanupExpiredAttempts(cmd.Context())
			if err != nil {
				return err
			}
			log.Printf("cleanup: removed %d expired attempts", n)
			return nil
		},
	}
}
