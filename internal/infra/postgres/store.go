package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// Store persists sessions, attempts and aggregates with bun. Outside InTx every call runs on its own.
type Store struct {
	executor
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{executor: executor{db: db}, db: db}
}

var _ app.Store = (*Store)(nil)
var _ app.Reader = (*Store)(nil)
var _ app.Directory = (*Store)(nil)

// InTx runs fn in a read-committed transaction; the session row lock taken by LockSession
// serializes concurrent submits of the same session.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, executor{db: tx})
	})
}

// executor implements app.Tx on top of either the pool or a transaction.
type executor struct {
	db bun.IDB
}

func (e executor) CreateSession(ctx context.Context, session domain.QuizSession) error {
	row := sessionRowFrom(session)
	if _, err := e.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (e executor) LockSession(ctx context.Context, sessionID string, userID int64) (domain.QuizSession, error) {
	var row sessionRow
	err := e.db.NewSelect().
		Model(&row).
		Where("qs.id = ?", sessionID).
		Where("qs.user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("lock session: %w", err)
	}
	return row.toDomain(), nil
}

func (e executor) RecordAttempt(ctx context.Context, attempt domain.QuizAttempt) (bool, error) {
	row := attemptRow{
		SessionID:      attempt.SessionID,
		UserID:         attempt.UserID,
		QuizID:         attempt.QuizID,
		SelectedOption: string(attempt.SelectedOption),
		IsCorrect:      attempt.IsCorrect,
		AnsweredAt:     attempt.AnsweredAt,
	}
	res, err := e.db.NewInsert().
		Model(&row).
		On("CONFLICT (session_id, quiz_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e executor) CompleteSession(ctx context.Context, sessionID string, userID int64, correct int, score float64, at time.Time) error {
	res, err := e.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("status = ?", string(domain.StatusCompleted)).
		Set("correct_answers = ?", correct).
		Set("score_percent = ?", score).
		Set("completed_at = ?", at).
		Where("id = ?", sessionID).
		Where("user_id = ?", userID).
		Where("status = ?", string(domain.StatusInProgress)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return e.transitionConflict(ctx, sessionID, userID)
	}
	return nil
}

// transitionConflict explains why a conditional status update matched no row.
func (e executor) transitionConflict(ctx context.Context, sessionID string, userID int64) error {
	var status string
	err := e.db.NewSelect().
		Model((*sessionRow)(nil)).
		Column("status").
		Where("qs.id = ?", sessionID).
		Where("qs.user_id = ?", userID).
		Scan(ctx, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read session status: %w", err)
	}
	return &domain.ConflictError{Status: domain.SessionStatus(status)}
}

func (e executor) AbandonSession(ctx context.Context, sessionID string, userID int64) (bool, error) {
	res, err := e.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("status = ?", string(domain.StatusAbandoned)).
		Where("id = ?", sessionID).
		Where("user_id = ?", userID).
		Where("status = ?", string(domain.StatusInProgress)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const upsertProgressSQL = `
INSERT INTO user_level_progress AS ulp
    (user_id, level, total_sessions, total_questions_answered, total_correct, best_score_percent, last_played_at)
VALUES (?, ?, 1, ?, ?, ?, ?)
ON CONFLICT (user_id, level) DO UPDATE SET
    total_sessions           = ulp.total_sessions + 1,
    total_questions_answered = ulp.total_questions_answered + EXCLUDED.total_questions_answered,
    total_correct            = ulp.total_correct + EXCLUDED.total_correct,
    best_score_percent       = GREATEST(ulp.best_score_percent, EXCLUDED.best_score_percent),
    last_played_at           = EXCLUDED.last_played_at`

// AddProgress folds a completed session into its aggregate with a single upsert so concurrent
// completions for the same (user, level) never lose an increment.
func (e executor) AddProgress(ctx context.Context, delta domain.ProgressDelta) error {
	_, err := e.db.ExecContext(ctx, upsertProgressSQL,
		delta.UserID,
		string(delta.Level),
		delta.TotalQuestions,
		delta.CorrectAnswers,
		delta.ScorePercent,
		delta.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
