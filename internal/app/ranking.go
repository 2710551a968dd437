package app

import (
	"sort"

	"quiz-progress-service/internal/domain"
)

// rankLeaderboard orders rows by level, best score desc, total correct desc and assigns
// rank_in_level per level. Tied rows share a rank and the next rank skips past the tie group.
func rankLeaderboard(rows []domain.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Level != b.Level {
			return a.Level.Order() < b.Level.Order()
		}
		if a.BestScorePercent != b.BestScorePercent {
			return a.BestScorePercent > b.BestScorePercent
		}
		if a.TotalCorrect != b.TotalCorrect {
			return a.TotalCorrect > b.TotalCorrect
		}
		return a.UserID < b.UserID
	})

	position := 0
	for i := range rows {
		if i == 0 || rows[i].Level != rows[i-1].Level {
			position = 0
		}
		position++
		if position > 1 && tied(rows[i], rows[i-1]) {
			rows[i].RankInLevel = rows[i-1].RankInLevel
			continue
		}
		rows[i].RankInLevel = position
	}
}

func tied(a, b domain.LeaderboardRow) bool {
	return a.BestScorePercent == b.BestScorePercent && a.TotalCorrect == b.TotalCorrect
}
