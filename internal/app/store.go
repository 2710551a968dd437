package app

import (
	"context"
	"time"

	"quiz-progress-service/internal/domain"
)

// QuestionSource serves read-only quiz content (database, cache, static bank).
type QuestionSource interface {
	// Draw returns up to n questions of level, sampled without replacement in no stable order.
	Draw(ctx context.Context, level domain.Level, n int) ([]domain.QuizQuestion, error)
	// AnswerKey returns the key for every known id; unknown ids are absent from the map.
	AnswerKey(ctx context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, error)
}

// Tx is the write surface of the session store. Inside Store.InTx every call shares one transaction.
type Tx interface {
	CreateSession(ctx context.Context, session domain.QuizSession) error
	// LockSession loads the caller's session and holds it until the transaction ends.
	// Sessions owned by another user are reported as domain.ErrNotFound.
	LockSession(ctx context.Context, sessionID string, userID int64) (domain.QuizSession, error)
	// RecordAttempt is a no-op when (session, quiz) already has a row; it reports whether a row was written.
	RecordAttempt(ctx context.Context, attempt domain.QuizAttempt) (bool, error)
	// CompleteSession finalizes an in_progress session. It returns a *domain.ConflictError when the
	// session already left in_progress.
	CompleteSession(ctx context.Context, sessionID string, userID int64, correct int, score float64, at time.Time) error
	// AbandonSession reports false when no in_progress session of userID matched.
	AbandonSession(ctx context.Context, sessionID string, userID int64) (bool, error)
	// AddProgress creates or folds one completed session into the (user, level) aggregate.
	AddProgress(ctx context.Context, delta domain.ProgressDelta) error
}

// Store is the durable session store.
type Store interface {
	Tx
	// InTx runs fn in one transaction. Any error returned by fn rolls back every write it made.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Reader serves analytics queries over sessions, attempts and aggregates.
type Reader interface {
	ListSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.QuizSession, error)
	ListAttempts(ctx context.Context, sessionIDs []string) ([]domain.AttemptDetail, error)
	ListProgress(ctx context.Context, filter domain.ProgressFilter) ([]domain.UserLevelProgress, error)
	// SessionTotals sums completed sessions per user; no ids means every user with a completed session.
	SessionTotals(ctx context.Context, userIDs ...int64) (map[int64]domain.SessionTotals, error)
	// QuestionTotals counts attempts for every question, including never-attempted ones.
	QuestionTotals(ctx context.Context, level *domain.Level) ([]domain.QuestionTotals, error)
}

// Directory is the auth subsystem's read-only view of users.
type Directory interface {
	GetUser(ctx context.Context, userID int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}
