package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/domain"
)

// Seed inserts users and questions that are not present yet and realigns the id sequences
// so rows created later do not collide with the explicit ids.
func Seed(ctx context.Context, db *bun.DB, users []domain.User, questions []domain.QuizQuestion) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(users) > 0 {
			rows := make([]userRow, 0, len(users))
			for _, u := range users {
				rows = append(rows, userRow{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)})
			}
			if _, err := tx.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Returning("NULL").Exec(ctx); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
		if len(questions) > 0 {
			rows := make([]questionRow, 0, len(questions))
			for _, q := range questions {
				rows = append(rows, questionRowFrom(q))
			}
			if _, err := tx.NewInsert().Model(&rows).On("CONFLICT (id) DO NOTHING").Returning("NULL").Exec(ctx); err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
		}
		for _, table := range []string{"users", "quiz"} {
			if _, err := tx.ExecContext(ctx,
				`SELECT setval(pg_get_serial_sequence(?, 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM ?), 1))`,
				table, bun.Ident(table),
			); err != nil {
				return fmt.Errorf("realign %s sequence: %w", table, err)
			}
		}
		return nil
	})
}
