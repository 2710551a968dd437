package app

import (
	"context"
	"fmt"

	"quiz-progress-service/internal/domain"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryQuery carries the raw optional filters of a history request.
type HistoryQuery struct {
	Level  string
	Status string
	Limit  int
	Offset int
}

// ProgressReader answers a learner's questions about their own progress.
type ProgressReader struct {
	reader Reader
	users  Directory
}

func NewProgressReader(reader Reader, users Directory) *ProgressReader {
	return &ProgressReader{reader: reader, users: users}
}

// Overview summarizes the caller's completed sessions.
func (p *ProgressReader) Overview(ctx context.Context, caller domain.Identity) (domain.UserOverview, error) {
	return p.overview(ctx, caller.UserID)
}

func (p *ProgressReader) overview(ctx context.Context, userID int64) (domain.UserOverview, error) {
	user, err := p.users.GetUser(ctx, userID)
	if err != nil {
		return domain.UserOverview{}, err
	}
	totals, err := p.reader.SessionTotals(ctx, userID)
	if err != nil {
		return domain.UserOverview{}, fmt.Errorf("session totals: %w", err)
	}
	return overviewOf(user, totals[userID]), nil
}

// Levels lists the caller's aggregates, one per level ever completed, in level order.
func (p *ProgressReader) Levels(ctx context.Context, caller domain.Identity) ([]domain.LevelProgressView, error) {
	return p.levels(ctx, caller.UserID)
}

func (p *ProgressReader) levels(ctx context.Context, userID int64) ([]domain.LevelProgressView, error) {
	rows, err := p.reader.ListProgress(ctx, domain.ProgressFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return levelViews(rows), nil
}

// History pages through the caller's sessions, newest first, each with its recorded attempts.
func (p *ProgressReader) History(ctx context.Context, caller domain.Identity, q HistoryQuery) ([]domain.SessionHistory, error) {
	filter, err := historyFilter(caller.UserID, q)
	if err != nil {
		return nil, err
	}
	sessions, err := p.reader.ListSessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]domain.SessionHistory, 0, len(sessions))
	if len(sessions) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	attempts, err := p.reader.ListAttempts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	bySession := make(map[string][]domain.AttemptDetail, len(sessions))
	for _, a := range attempts {
		bySession[a.SessionID] = append(bySession[a.SessionID], a)
	}
	for _, s := range sessions {
		list := bySession[s.ID]
		if list == nil {
			list = []domain.AttemptDetail{}
		}
		out = append(out, domain.SessionHistory{QuizSession: s, Attempts: list})
	}
	return out, nil
}

func historyFilter(userID int64, q HistoryQuery) (domain.SessionFilter, error) {
	filter := domain.SessionFilter{UserID: &userID, Limit: q.Limit, Offset: q.Offset}
	if q.Level != "" {
		level, ok := domain.ParseLevel(q.Level)
		if !ok {
			return filter, domain.Invalid("level must be easy, intermediate, or hard")
		}
		filter.Level = &level
	}
	if q.Status != "" {
		status, ok := domain.ParseStatus(q.Status)
		if !ok {
			return filter, domain.Invalid("status must be in_progress, completed, or abandoned")
		}
		filter.Status = &status
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultHistoryLimit
	}
	if filter.Limit > MaxHistoryLimit {
		filter.Limit = MaxHistoryLimit
	}
	if filter.Offset < 0 {
		return filter, domain.Invalid("offset must not be negative")
	}
	return filter, nil
}

func overviewOf(user domain.User, totals domain.SessionTotals) domain.UserOverview {
	return domain.UserOverview{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Stats:  statsFrom(totals),
	}
}
