package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-progress-service/internal/domain"
)

const (
	// MaxQuestions bounds question_count on start and practice draws.
	MaxQuestions = 20
	// DefaultPracticeCount is used when a practice draw does not name a count.
	DefaultPracticeCount = 5
)

// SessionManager owns the quiz-session state machine: start, submit, abandon.
type SessionManager struct {
	store     Store
	questions QuestionSource
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewSessionManager(store Store, questions QuestionSource, log *zap.Logger) *SessionManager {
	return NewSessionManagerWithClock(store, questions, log, time.Now)
}

// NewSessionManagerWithClock is used by tests for deterministic timestamps.
func NewSessionManagerWithClock(store Store, questions QuestionSource, log *zap.Logger, now func() time.Time) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		store:     store,
		questions: questions,
		log:       log.Named("sessions"),
		now:       now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Start draws up to questionCount questions for level and opens an in_progress session.
func (m *SessionManager) Start(ctx context.Context, caller domain.Identity, rawLevel string, questionCount int) (domain.StartResult, error) {
	level, ok := domain.ParseLevel(rawLevel)
	if !ok {
		return domain.StartResult{}, domain.Invalid("level must be easy, intermediate, or hard")
	}
	if questionCount < 1 || questionCount > MaxQuestions {
		return domain.StartResult{}, domain.Invalid("question_count must be between 1 and %d", MaxQuestions)
	}

	drawn, err := m.questions.Draw(ctx, level, questionCount)
	if err != nil {
		return domain.StartResult{}, fmt.Errorf("draw questions: %w", err)
	}
	if len(drawn) == 0 {
		return domain.StartResult{}, domain.ErrNoContent
	}
	if len(drawn) > questionCount {
		drawn = drawn[:questionCount]
	}

	session := domain.QuizSession{
		ID:             m.newID(),
		UserID:         caller.UserID,
		Level:          level,
		TotalQuestions: len(drawn),
		Status:         domain.StatusInProgress,
		StartedAt:      m.now().UTC(),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return domain.StartResult{}, fmt.Errorf("create session: %w", err)
	}

	public := make([]domain.PublicQuestion, 0, len(drawn))
	for _, q := range drawn {
		public = append(public, q.Public())
	}
	m.log.Info("session started",
		zap.String("session_id", session.ID),
		zap.Int64("user_id", caller.UserID),
		zap.String("level", string(level)),
		zap.Int("total_questions", session.TotalQuestions),
	)
	return domain.StartResult{
		SessionID:      session.ID,
		Level:          level,
		TotalQuestions: session.TotalQuestions,
		Questions:      public,
	}, nil
}

// Practice draws answer-free questions without opening a session.
func (m *SessionManager) Practice(ctx context.Context, rawLevel string, count int) (domain.PracticeSet, error) {
	level, ok := domain.ParseLevel(rawLevel)
	if !ok {
		return domain.PracticeSet{}, domain.Invalid("level must be easy, intermediate, or hard")
	}
	if count <= 0 {
		count = DefaultPracticeCount
	}
	if count > MaxQuestions {
		count = MaxQuestions
	}
	drawn, err := m.questions.Draw(ctx, level, count)
	if err != nil {
		return domain.PracticeSet{}, fmt.Errorf("draw questions: %w", err)
	}
	if len(drawn) > count {
		drawn = drawn[:count]
	}
	set := domain.PracticeSet{Level: level, Questions: make([]domain.PublicQuestion, 0, len(drawn))}
	for _, q := range drawn {
		set.Questions = append(set.Questions, q.Public())
	}
	set.Count = len(set.Questions)
	return set, nil
}

// Submit scores the caller's in_progress session exactly once. Attempts, the session transition and
// the aggregate update are applied in one transaction; the session row is locked before its status is
// checked so a concurrent or retried submit observes the conflict instead of scoring again.
func (m *SessionManager) Submit(ctx context.Context, caller domain.Identity, sessionID string, answers []domain.Answer) (domain.SubmitResult, error) {
	if len(answers) == 0 {
		return domain.SubmitResult{}, domain.Invalid("answers list is required")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return domain.SubmitResult{}, domain.ErrNotFound
	}

	ids := submittedIDs(answers)
	if len(ids) == 0 {
		return domain.SubmitResult{}, domain.Invalid("answers must name at least one quiz_id")
	}
	key, err := m.questions.AnswerKey(ctx, ids)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("load answer key: %w", err)
	}

	var result domain.SubmitResult
	err = m.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		session, err := tx.LockSession(ctx, sessionID, caller.UserID)
		if err != nil {
			return err
		}
		if session.Status != domain.StatusInProgress {
			return &domain.ConflictError{Status: session.Status}
		}

		now := m.now().UTC()
		scored := scorable(session, answers, key)
		results := make([]domain.AnswerResult, 0, len(scored))
		correct := 0
		for _, s := range scored {
			isCorrect := s.selected == s.correct
			if _, err := tx.RecordAttempt(ctx, domain.QuizAttempt{
				SessionID:      session.ID,
				UserID:         caller.UserID,
				QuizID:         s.quizID,
				SelectedOption: s.selected,
				IsCorrect:      isCorrect,
				AnsweredAt:     now,
			}); err != nil {
				return fmt.Errorf("record attempt: %w", err)
			}
			if isCorrect {
				correct++
			}
			results = append(results, domain.AnswerResult{
				QuizID:         s.quizID,
				SelectedOption: s.selected,
				CorrectOption:  s.correct,
				IsCorrect:      isCorrect,
			})
		}

		score := ScorePercent(correct, session.TotalQuestions)
		if err := tx.CompleteSession(ctx, session.ID, caller.UserID, correct, score, now); err != nil {
			return err
		}
		if err := tx.AddProgress(ctx, domain.ProgressDelta{
			UserID:         caller.UserID,
			Level:          session.Level,
			TotalQuestions: session.TotalQuestions,
			CorrectAnswers: correct,
			ScorePercent:   score,
			PlayedAt:       now,
		}); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		result = domain.SubmitResult{
			SessionID:      session.ID,
			Level:          session.Level,
			TotalQuestions: session.TotalQuestions,
			CorrectAnswers: correct,
			ScorePercent:   score,
			Results:        results,
		}
		return nil
	})
	if err != nil {
		if isClientError(err) {
			return domain.SubmitResult{}, err
		}
		m.log.Error("submit rolled back", zap.String("session_id", sessionID), zap.Int64("user_id", caller.UserID), zap.Error(err))
		return domain.SubmitResult{}, fmt.Errorf("submit session: %w", err)
	}

	m.log.Info("session completed",
		zap.String("session_id", result.SessionID),
		zap.Int64("user_id", caller.UserID),
		zap.String("level", string(result.Level)),
		zap.Int("correct_answers", result.CorrectAnswers),
		zap.Float64("score_percent", result.ScorePercent),
	)
	return result, nil
}

// Abandon moves the caller's in_progress session to abandoned. Finalized sessions and sessions
// of other users are both reported as not found.
func (m *SessionManager) Abandon(ctx context.Context, caller domain.Identity, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return domain.ErrNotFound
	}
	ok, err := m.store.AbandonSession(ctx, sessionID, caller.UserID)
	if err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	m.log.Info("session abandoned", zap.String("session_id", sessionID), zap.Int64("user_id", caller.UserID))
	return nil
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrForbidden)
}
