package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/domain"
)

const levelOrderExpr = "CASE ulp.level WHEN 'easy' THEN 0 WHEN 'intermediate' THEN 1 ELSE 2 END"

func (s *Store) ListSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.QuizSession, error) {
	var rows []sessionRow
	q := apply(s.db.NewSelect().Model(&rows), sessionPredicates(filter)).
		OrderExpr("qs.started_at DESC, qs.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	out := make([]domain.QuizSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) ListAttempts(ctx context.Context, sessionIDs []string) ([]domain.AttemptDetail, error) {
	out := make([]domain.AttemptDetail, 0)
	if len(sessionIDs) == 0 {
		return out, nil
	}
	var rows []attemptDetailRow
	err := s.db.NewSelect().
		TableExpr("quiz_attempts AS qa").
		Join("JOIN quiz AS q ON q.id = qa.quiz_id").
		ColumnExpr("qa.session_id, qa.quiz_id, q.question_text, qa.selected_option, q.correct_option, qa.is_correct, qa.answered_at").
		Where("qa.session_id IN (?)", bun.In(sessionIDs)).
		OrderExpr("qa.answered_at ASC, qa.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}
	for _, r := range rows {
		out = append(out, domain.AttemptDetail{
			SessionID:      r.SessionID,
			QuizID:         r.QuizID,
			Prompt:         r.Prompt,
			SelectedOption: domain.Option(r.SelectedOption),
			CorrectOption:  domain.Option(r.CorrectOption),
			IsCorrect:      r.IsCorrect,
			AnsweredAt:     r.AnsweredAt.UTC(),
		})
	}
	return out, nil
}

func (s *Store) ListProgress(ctx context.Context, filter domain.ProgressFilter) ([]domain.UserLevelProgress, error) {
	var rows []progressRow
	err := apply(s.db.NewSelect().Model(&rows), progressPredicates(filter)).
		OrderExpr("ulp.user_id ASC").
		OrderExpr(levelOrderExpr).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	out := make([]domain.UserLevelProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) SessionTotals(ctx context.Context, userIDs ...int64) (map[int64]domain.SessionTotals, error) {
	var rows []sessionTotalsRow
	q := s.db.NewSelect().
		TableExpr("quiz_sessions AS qs").
		ColumnExpr("qs.user_id").
		ColumnExpr("COUNT(*) AS sessions").
		ColumnExpr("COALESCE(SUM(qs.total_questions), 0) AS questions").
		ColumnExpr("COALESCE(SUM(qs.correct_answers), 0) AS correct").
		ColumnExpr("COALESCE(SUM(qs.score_percent), 0) AS score_sum").
		ColumnExpr("COALESCE(MAX(qs.score_percent), 0) AS best_score").
		ColumnExpr("MAX(qs.completed_at) AS last_completed_at").
		Where("qs.status = ?", string(domain.StatusCompleted)).
		GroupExpr("qs.user_id")
	if len(userIDs) > 0 {
		q = q.Where("qs.user_id IN (?)", bun.In(userIDs))
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select session totals: %w", err)
	}
	totals := make(map[int64]domain.SessionTotals, len(rows))
	for _, r := range rows {
		totals[r.UserID] = domain.SessionTotals{
			UserID:          r.UserID,
			Sessions:        r.Sessions,
			Questions:       r.Questions,
			Correct:         r.Correct,
			ScoreSum:        r.ScoreSum,
			BestScore:       r.BestScore,
			LastCompletedAt: utcPtr(r.LastCompletedAt),
		}
	}
	return totals, nil
}

func (s *Store) QuestionTotals(ctx context.Context, level *domain.Level) ([]domain.QuestionTotals, error) {
	var rows []questionTotalsRow
	q := s.db.NewSelect().
		TableExpr("quiz AS q").
		Join("LEFT JOIN quiz_attempts AS qa ON qa.quiz_id = q.id").
		ColumnExpr("q.id AS quiz_id, q.level, q.question_text").
		ColumnExpr("COUNT(qa.id) AS attempts").
		ColumnExpr("COUNT(qa.id) FILTER (WHERE qa.is_correct) AS correct_attempts").
		GroupExpr("q.id").
		OrderExpr("q.id ASC")
	if level != nil {
		q = q.Where("q.level = ?", string(*level))
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("select question totals: %w", err)
	}
	out := make([]domain.QuestionTotals, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuestionTotals{
			QuizID:          r.QuizID,
			Level:           domain.Level(r.Level),
			Prompt:          r.Prompt,
			Attempts:        r.Attempts,
			CorrectAttempts: r.CorrectAttempts,
		})
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("u.id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("u.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
