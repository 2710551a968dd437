package app

import (
	"context"
	"fmt"
	"sort"

	"quiz-progress-service/internal/domain"
)

// RecentSessionsLimit is how many sessions a user detail report carries.
const RecentSessionsLimit = 10

// Analytics is the admin-only reporting surface. Every method refuses non-admin callers.
type Analytics struct {
	reader   Reader
	users    Directory
	progress *ProgressReader
}

func NewAnalytics(reader Reader, users Directory) *Analytics {
	return &Analytics{reader: reader, users: users, progress: NewProgressReader(reader, users)}
}

// Users returns one row per known user ordered by average score, then session count.
func (a *Analytics) Users(ctx context.Context, caller domain.Identity) ([]domain.UserOverview, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	totals, err := a.reader.SessionTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("session totals: %w", err)
	}
	out := make([]domain.UserOverview, 0, len(users))
	for _, u := range users {
		out = append(out, overviewOf(u, totals[u.ID]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgScorePercent != out[j].AvgScorePercent {
			return out[i].AvgScorePercent > out[j].AvgScorePercent
		}
		if out[i].TotalSessions != out[j].TotalSessions {
			return out[i].TotalSessions > out[j].TotalSessions
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// Leaderboard ranks users who completed at least one session, per level or for rawLevel only.
func (a *Analytics) Leaderboard(ctx context.Context, caller domain.Identity, rawLevel string) ([]domain.LeaderboardRow, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	filter := domain.ProgressFilter{OnlyPlayed: true}
	if rawLevel != "" {
		level, ok := domain.ParseLevel(rawLevel)
		if !ok {
			return nil, domain.Invalid("level must be easy, intermediate, or hard")
		}
		filter.Level = &level
	}
	rows, err := a.reader.ListProgress(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	board := make([]domain.LeaderboardRow, 0, len(rows))
	for _, p := range rows {
		name, known := names[p.UserID]
		if !known || p.TotalSessions <= 0 {
			continue
		}
		board = append(board, domain.LeaderboardRow{
			UserID:            p.UserID,
			Name:              name,
			LevelProgressView: levelView(p),
		})
	}
	rankLeaderboard(board)
	return board, nil
}

// UserDetail combines identity, overall stats, per-level breakdown and the latest sessions of one user.
func (a *Analytics) UserDetail(ctx context.Context, caller domain.Identity, userID int64) (domain.UserDetail, error) {
	if !caller.IsAdmin() {
		return domain.UserDetail{}, domain.ErrForbidden
	}
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		return domain.UserDetail{}, err
	}
	totals, err := a.reader.SessionTotals(ctx, userID)
	if err != nil {
		return domain.UserDetail{}, fmt.Errorf("session totals: %w", err)
	}
	levels, err := a.progress.levels(ctx, userID)
	if err != nil {
		return domain.UserDetail{}, err
	}
	recent, err := a.reader.ListSessions(ctx, domain.SessionFilter{UserID: &userID, Limit: RecentSessionsLimit})
	if err != nil {
		return domain.UserDetail{}, fmt.Errorf("list sessions: %w", err)
	}
	if recent == nil {
		recent = []domain.QuizSession{}
	}
	return domain.UserDetail{
		User:           user,
		Stats:          statsFrom(totals[userID]),
		LevelProgress:  levels,
		RecentSessions: recent,
	}, nil
}

// QuizStats reports attempt counts and correct rate per question, hardest first within each level.
// Questions nobody attempted have no rate and sort after every rated question of their level.
func (a *Analytics) QuizStats(ctx context.Context, caller domain.Identity, rawLevel string) ([]domain.QuestionStats, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	var level *domain.Level
	if rawLevel != "" {
		lv, ok := domain.ParseLevel(rawLevel)
		if !ok {
			return nil, domain.Invalid("level must be easy, intermediate, or hard")
		}
		level = &lv
	}
	totals, err := a.reader.QuestionTotals(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("question totals: %w", err)
	}

	out := make([]domain.QuestionStats, 0, len(totals))
	for _, t := range totals {
		s := domain.QuestionStats{
			QuizID:          t.QuizID,
			Level:           t.Level,
			Prompt:          t.Prompt,
			TotalAttempts:   t.Attempts,
			CorrectAttempts: t.CorrectAttempts,
		}
		if t.Attempts > 0 {
			rate := percent(t.CorrectAttempts, t.Attempts)
			s.CorrectRatePercent = &rate
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if x.Level != y.Level {
			return x.Level.Order() < y.Level.Order()
		}
		switch {
		case x.CorrectRatePercent == nil && y.CorrectRatePercent == nil:
			return x.QuizID < y.QuizID
		case x.CorrectRatePercent == nil:
			return false
		case y.CorrectRatePercent == nil:
			return true
		case *x.CorrectRatePercent != *y.CorrectRatePercent:
			return *x.CorrectRatePercent < *y.CorrectRatePercent
		}
		return x.QuizID < y.QuizID
	})
	return out, nil
}
