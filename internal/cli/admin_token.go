package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewAdminTokenCmd prints a signed bearer token for the admin API.
func NewAdminTokenCmd(configPath *string) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issue a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ttl := config.TTLDuration(cfg.Admin.TokenTTL, 12*time.Hour)
			token, err := transport.IssueAdminToken(cfg.Admin.JWTSecret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "name recorded in the token")
	return cmd
}
