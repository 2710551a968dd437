package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/postgres"
	"quiz-progress-service/internal/logger"
)

// NewSeedCmd loads the sample users and questions into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users and quiz questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Server.Mode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()
			if err := runMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			users, questions := sampleUsers(), sampleQuestions()
			if err := postgres.Seed(cmd.Context(), db, users, questions); err != nil {
				return err
			}
			log.Info("sample content seeded", zap.Int("users", len(users)), zap.Int("questions", len(questions)))
			return nil
		},
	}
}
