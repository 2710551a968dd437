package app

import (
	"testing"

	"quiz-progress-service/internal/domain"
)

func TestScorePercent(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{3, 5, 60},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := ScorePercent(c.correct, c.total); got != c.want {
			t.Fatalf("ScorePercent(%d, %d) = %v, want %v", c.correct, c.total, got, c.want)
		}
	}
}

func TestScorableCapsAtSessionSize(t *testing.T) {
	session := domain.QuizSession{Level: domain.LevelEasy, TotalQuestions: 2}
	key := map[int64]domain.KeyEntry{
		1: {Level: domain.LevelEasy, Correct: domain.OptionA},
		2: {Level: domain.LevelEasy, Correct: domain.OptionB},
		3: {Level: domain.LevelEasy, Correct: domain.OptionC},
	}
	got := scorable(session, []domain.Answer{
		{QuizID: 1, SelectedOption: "a"},
		{QuizID: 2, SelectedOption: "B"},
		{QuizID: 3, SelectedOption: "C"},
	}, key)
	if len(got) != 2 || got[0].quizID != 1 || got[1].quizID != 2 {
		t.Fatalf("expected the first two answers, got %+v", got)
	}
	if got[0].selected != domain.OptionA {
		t.Fatalf("expected option upper-cased, got %q", got[0].selected)
	}
}

func TestRankLeaderboard(t *testing.T) {
	row := func(user int64, level domain.Level, best float64, correct int) domain.LeaderboardRow {
		return domain.LeaderboardRow{
			UserID: user,
			LevelProgressView: domain.LevelProgressView{
				Level: level, BestScorePercent: best, TotalCorrect: correct, TotalSessions: 1,
			},
		}
	}
	rows := []domain.LeaderboardRow{
		row(4, domain.LevelHard, 50, 3),
		row(3, domain.LevelEasy, 80, 12),
		row(1, domain.LevelEasy, 100, 10),
		row(2, domain.LevelEasy, 80, 12),
		row(5, domain.LevelEasy, 80, 4),
	}
	rankLeaderboard(rows)

	want := []struct {
		user int64
		rank int
	}{{1, 1}, {2, 2}, {3, 2}, {5, 4}, {4, 1}}
	for i, w := range want {
		if rows[i].UserID != w.user || rows[i].RankInLevel != w.rank {
			t.Fatalf("position %d: want user %d rank %d, got user %d rank %d",
				i, w.user, w.rank, rows[i].UserID, rows[i].RankInLevel)
		}
	}
}

func TestStatsFromAveragesCompletedSessions(t *testing.T) {
	stats := statsFrom(domain.SessionTotals{Sessions: 3, Questions: 15, Correct: 10, ScoreSum: 200, BestScore: 80})
	if stats.AvgScorePercent != 66.67 || stats.BestScorePercent != 80 || stats.TotalQuestionsAttempted != 15 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if empty := statsFrom(domain.SessionTotals{}); empty.AvgScorePercent != 0 || empty.LastPlayedAt != nil {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}
