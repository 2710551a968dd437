package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// Store is an in-memory implementation of app.Store, app.Reader and app.Directory.
// A transaction holds the write lock for its whole duration and works on a copy of the
// state that replaces the live state only when the transaction succeeds.
type Store struct {
	bank  *QuestionBank
	users map[int64]domain.User

	mu    sync.RWMutex
	state *state
}

type attemptKey struct {
	sessionID string
	quizID    int64
}

type progressKey struct {
	userID int64
	level  domain.Level
}

type state struct {
	sessions map[string]domain.QuizSession
	attempts []domain.QuizAttempt
	answered map[attemptKey]struct{}
	progress map[progressKey]domain.UserLevelProgress
}

func newState() *state {
	return &state{
		sessions: make(map[string]domain.QuizSession),
		answered: make(map[attemptKey]struct{}),
		progress: make(map[progressKey]domain.UserLevelProgress),
	}
}

func (s *state) clone() *state {
	c := &state{
		sessions: make(map[string]domain.QuizSession, len(s.sessions)),
		attempts: append([]domain.QuizAttempt(nil), s.attempts...),
		answered: make(map[attemptKey]struct{}, len(s.answered)),
		progress: make(map[progressKey]domain.UserLevelProgress, len(s.progress)),
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k := range s.answered {
		c.answered[k] = struct{}{}
	}
	for k, v := range s.progress {
		c.progress[k] = v
	}
	return c
}

func NewStore(bank *QuestionBank, users []domain.User) *Store {
	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &Store{bank: bank, users: byID, state: newState()}
}

var _ app.Store = (*Store)(nil)
var _ app.Reader = (*Store)(nil)
var _ app.Directory = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(ctx, &txView{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) CreateSession(ctx context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txView{st: s.state}).CreateSession(ctx, session)
}

func (s *Store) LockSession(ctx context.Context, sessionID string, userID int64) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&txView{st: s.state}).LockSession(ctx, sessionID, userID)
}

func (s *Store) RecordAttempt(ctx context.Context, attempt domain.QuizAttempt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txView{st: s.state}).RecordAttempt(ctx, attempt)
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, userID int64, correct int, score float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txView{st: s.state}).CompleteSession(ctx, sessionID, userID, correct, score, at)
}

func (s *Store) AbandonSession(ctx context.Context, sessionID string, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txView{st: s.state}).AbandonSession(ctx, sessionID, userID)
}

func (s *Store) AddProgress(ctx context.Context, delta domain.ProgressDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txView{st: s.state}).AddProgress(ctx, delta)
}

// txView applies writes to one state snapshot; the caller holds the lock.
type txView struct {
	st *state
}

func (t *txView) CreateSession(_ context.Context, session domain.QuizSession) error {
	t.st.sessions[session.ID] = session
	return nil
}

func (t *txView) LockSession(_ context.Context, sessionID string, userID int64) (domain.QuizSession, error) {
	session, ok := t.st.sessions[sessionID]
	if !ok || session.UserID != userID {
		return domain.QuizSession{}, domain.ErrNotFound
	}
	return session, nil
}

func (t *txView) RecordAttempt(_ context.Context, attempt domain.QuizAttempt) (bool, error) {
	k := attemptKey{sessionID: attempt.SessionID, quizID: attempt.QuizID}
	if _, ok := t.st.answered[k]; ok {
		return false, nil
	}
	t.st.answered[k] = struct{}{}
	t.st.attempts = append(t.st.attempts, attempt)
	return true, nil
}

func (t *txView) CompleteSession(_ context.Context, sessionID string, userID int64, correct int, score float64, at time.Time) error {
	session, ok := t.st.sessions[sessionID]
	if !ok || session.UserID != userID {
		return domain.ErrNotFound
	}
	if session.Status != domain.StatusInProgress {
		return &domain.ConflictError{Status: session.Status}
	}
	session.CorrectAnswers = correct
	session.ScorePercent = score
	session.Status = domain.StatusCompleted
	completedAt := at
	session.CompletedAt = &completedAt
	t.st.sessions[sessionID] = session
	return nil
}

func (t *txView) AbandonSession(_ context.Context, sessionID string, userID int64) (bool, error) {
	session, ok := t.st.sessions[sessionID]
	if !ok || session.UserID != userID || session.Status != domain.StatusInProgress {
		return false, nil
	}
	session.Status = domain.StatusAbandoned
	t.st.sessions[sessionID] = session
	return true, nil
}

func (t *txView) AddProgress(_ context.Context, delta domain.ProgressDelta) error {
	k := progressKey{userID: delta.UserID, level: delta.Level}
	row, ok := t.st.progress[k]
	if !ok {
		row = domain.UserLevelProgress{UserID: delta.UserID, Level: delta.Level}
	}
	row.TotalSessions++
	row.TotalQuestionsAnswered += delta.TotalQuestions
	row.TotalCorrect += delta.CorrectAnswers
	if delta.ScorePercent > row.BestScorePercent {
		row.BestScorePercent = delta.ScorePercent
	}
	playedAt := delta.PlayedAt
	row.LastPlayedAt = &playedAt
	t.st.progress[k] = row
	return nil
}

func (s *Store) ListSessions(_ context.Context, filter domain.SessionFilter) ([]domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.QuizSession, 0)
	for _, session := range s.state.sessions {
		if filter.UserID != nil && session.UserID != *filter.UserID {
			continue
		}
		if filter.Level != nil && session.Level != *filter.Level {
			continue
		}
		if filter.Status != nil && session.Status != *filter.Status {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})

	if filter.Offset >= len(out) {
		return []domain.QuizSession{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListAttempts(_ context.Context, sessionIDs []string) ([]domain.AttemptDetail, error) {
	want := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptDetail, 0)
	for _, a := range s.state.attempts {
		if _, ok := want[a.SessionID]; !ok {
			continue
		}
		q, ok := s.bank.Question(a.QuizID)
		if !ok {
			continue
		}
		out = append(out, domain.AttemptDetail{
			SessionID:      a.SessionID,
			QuizID:         a.QuizID,
			Prompt:         q.Prompt,
			SelectedOption: a.SelectedOption,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      a.IsCorrect,
			AnsweredAt:     a.AnsweredAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AnsweredAt.Before(out[j].AnsweredAt) })
	return out, nil
}

func (s *Store) ListProgress(_ context.Context, filter domain.ProgressFilter) ([]domain.UserLevelProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserLevelProgress, 0)
	for _, row := range s.state.progress {
		if filter.UserID != nil && row.UserID != *filter.UserID {
			continue
		}
		if filter.Level != nil && row.Level != *filter.Level {
			continue
		}
		if filter.OnlyPlayed && row.TotalSessions <= 0 {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Level.Order() < out[j].Level.Order()
	})
	return out, nil
}

func (s *Store) SessionTotals(_ context.Context, userIDs ...int64) (map[int64]domain.SessionTotals, error) {
	want := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[int64]domain.SessionTotals)
	for _, session := range s.state.sessions {
		if session.Status != domain.StatusCompleted {
			continue
		}
		if _, ok := want[session.UserID]; len(want) > 0 && !ok {
			continue
		}
		t := totals[session.UserID]
		t.UserID = session.UserID
		t.Sessions++
		t.Questions += session.TotalQuestions
		t.Correct += session.CorrectAnswers
		t.ScoreSum += session.ScorePercent
		if session.ScorePercent > t.BestScore {
			t.BestScore = session.ScorePercent
		}
		if session.CompletedAt != nil && (t.LastCompletedAt == nil || session.CompletedAt.After(*t.LastCompletedAt)) {
			at := *session.CompletedAt
			t.LastCompletedAt = &at
		}
		totals[session.UserID] = t
	}
	return totals, nil
}

func (s *Store) QuestionTotals(_ context.Context, level *domain.Level) ([]domain.QuestionTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[int64]int)
	out := make([]domain.QuestionTotals, 0)
	for _, q := range s.bank.All() {
		if level != nil && q.Level != *level {
			continue
		}
		index[q.ID] = len(out)
		out = append(out, domain.QuestionTotals{QuizID: q.ID, Level: q.Level, Prompt: q.Prompt})
	}
	for _, a := range s.state.attempts {
		i, ok := index[a.QuizID]
		if !ok {
			continue
		}
		out[i].Attempts++
		if a.IsCorrect {
			out[i].CorrectAttempts++
		}
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (domain.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
