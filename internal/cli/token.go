package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quiz-progress-service/internal/auth"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/domain"
)

// NewTokenCmd prints a signed bearer token, mostly for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID int64
		role   string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive id")
			}
			tokens := auth.NewTokens(jwtSecret(cfg), config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			raw, err := tokens.Issue(userID, domain.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id to put in the token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleLearner), "learner or admin")
	return cmd
}

// devSecret is used when no secret is configured so local runs work out of the box.
const devSecret = "dev-secret-change-me"

func jwtSecret(cfg config.Config) string {
	if cfg.Auth.JWTSecret == "" {
		return devSecret
	}
	return cfg.Auth.JWTSecret
}
