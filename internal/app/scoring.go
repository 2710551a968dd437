package app

import (
	"math"
	"sort"

	"quiz-progress-service/internal/domain"
)

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent is part/whole*100 rounded to two decimals, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

// ScorePercent is the score of a session with correct answers out of total questions.
func ScorePercent(correct, total int) float64 {
	return percent(correct, total)
}

type scoredAnswer struct {
	quizID   int64
	selected domain.Option
	correct  domain.Option
}

// scorable filters submitted answers down to the ones that count for a session:
// known questions of the session's level with an A-D option, first answer per question wins,
// and never more than the session's question count.
func scorable(session domain.QuizSession, answers []domain.Answer, key map[int64]domain.KeyEntry) []scoredAnswer {
	out := make([]scoredAnswer, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if len(out) == session.TotalQuestions {
			break
		}
		opt, ok := domain.ParseOption(a.SelectedOption)
		if !ok {
			continue
		}
		entry, ok := key[a.QuizID]
		if !ok || entry.Level != session.Level {
			continue
		}
		if _, dup := seen[a.QuizID]; dup {
			continue
		}
		seen[a.QuizID] = struct{}{}
		out = append(out, scoredAnswer{quizID: a.QuizID, selected: opt, correct: entry.Correct})
	}
	return out
}

// submittedIDs returns the distinct positive quiz ids in submission order.
func submittedIDs(answers []domain.Answer) []int64 {
	ids := make([]int64, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if a.QuizID <= 0 {
			continue
		}
		if _, ok := seen[a.QuizID]; ok {
			continue
		}
		seen[a.QuizID] = struct{}{}
		ids = append(ids, a.QuizID)
	}
	return ids
}

// levelView recomputes accuracy for a stored aggregate row.
func levelView(p domain.UserLevelProgress) domain.LevelProgressView {
	return domain.LevelProgressView{
		Level:                  p.Level,
		TotalSessions:          p.TotalSessions,
		TotalQuestionsAnswered: p.TotalQuestionsAnswered,
		TotalCorrect:           p.TotalCorrect,
		OverallAccuracyPercent: percent(p.TotalCorrect, p.TotalQuestionsAnswered),
		BestScorePercent:       p.BestScorePercent,
		LastPlayedAt:           p.LastPlayedAt,
	}
}

func levelViews(rows []domain.UserLevelProgress) []domain.LevelProgressView {
	sortProgress(rows)
	out := make([]domain.LevelProgressView, 0, len(rows))
	for _, p := range rows {
		out = append(out, levelView(p))
	}
	return out
}

func sortProgress(rows []domain.UserLevelProgress) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Level.Order() < rows[j].Level.Order()
	})
}

func statsFrom(t domain.SessionTotals) domain.Stats {
	stats := domain.Stats{
		TotalSessions:           t.Sessions,
		TotalQuestionsAttempted: t.Questions,
		TotalCorrect:            t.Correct,
		BestScorePercent:        t.BestScore,
		LastPlayedAt:            t.LastCompletedAt,
	}
	if t.Sessions > 0 {
		stats.AvgScorePercent = round2(t.ScoreSum / float64(t.Sessions))
	}
	return stats
}
