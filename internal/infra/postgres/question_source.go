package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// QuestionSource reads quiz content straight from Postgres.
type QuestionSource struct {
	pool *pgxpool.Pool
}

func NewQuestionSource(pool *pgxpool.Pool) *QuestionSource {
	return &QuestionSource{pool: pool}
}

var _ app.QuestionSource = (*QuestionSource)(nil)

const drawQuestionsSQL = `
SELECT id, level, question_text, option_a, option_b, option_c, option_d, correct_option, explanation
FROM quiz
WHERE level = $1
ORDER BY random()
LIMIT $2`

func (s *QuestionSource) Draw(ctx context.Context, level domain.Level, n int) ([]domain.QuizQuestion, error) {
	rows, err := s.pool.Query(ctx, drawQuestionsSQL, string(level), n)
	if err != nil {
		return nil, fmt.Errorf("draw questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizQuestion, 0, n)
	for rows.Next() {
		var (
			q            domain.QuizQuestion
			lvl, correct string
			explanation  *string
		)
		if err := rows.Scan(&q.ID, &lvl, &q.Prompt, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct, &explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Level = domain.Level(lvl)
		q.CorrectOption = domain.Option(correct)
		q.Explanation = explanation
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("draw questions: %w", err)
	}
	return out, nil
}

func (s *QuestionSource) AnswerKey(ctx context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, error) {
	key := make(map[int64]domain.KeyEntry, len(quizIDs))
	if len(quizIDs) == 0 {
		return key, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, level, correct_option FROM quiz WHERE id = ANY($1)`, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id             int64
			level, correct string
		)
		if err := rows.Scan(&id, &level, &correct); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		key[id] = domain.KeyEntry{Level: domain.Level(level), Correct: domain.Option(correct)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	return key, nil
}
