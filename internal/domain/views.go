package domain

import "time"

// Answer is one submitted (question, option) pair. Values are kept raw so malformed
// entries can be skipped individually instead of failing the whole submission.
type Answer struct {
	QuizID         int64
	SelectedOption string
}

// KeyEntry is the answer key for one question.
type KeyEntry struct {
	Level   Level
	Correct Option
}

type StartResult struct {
	SessionID      string           `json:"session_id"`
	Level          Level            `json:"level"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []PublicQuestion `json:"questions"`
}

type PracticeSet struct {
	Level     Level            `json:"level"`
	Count     int              `json:"count"`
	Questions []PublicQuestion `json:"questions"`
}

type AnswerResult struct {
	QuizID         int64  `json:"quiz_id"`
	SelectedOption Option `json:"selected_option"`
	CorrectOption  Option `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}

type SubmitResult struct {
	SessionID      string         `json:"session_id"`
	Level          Level          `json:"level"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	ScorePercent   float64        `json:"score_percent"`
	Results        []AnswerResult `json:"results"`
}

// Stats summarizes completed sessions only.
type Stats struct {
	TotalSessions           int        `json:"total_sessions"`
	TotalQuestionsAttempted int        `json:"total_questions_attempted"`
	TotalCorrect            int        `json:"total_correct"`
	AvgScorePercent         float64    `json:"avg_score_percent"`
	BestScorePercent        float64    `json:"best_score_percent"`
	LastPlayedAt            *time.Time `json:"last_played_at"`
}

type UserOverview struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Stats
}

type LevelProgressView struct {
	Level                  Level      `json:"level"`
	TotalSessions          int        `json:"total_sessions"`
	TotalQuestionsAnswered int        `json:"total_questions_answered"`
	TotalCorrect           int        `json:"total_correct"`
	OverallAccuracyPercent float64    `json:"overall_accuracy_percent"`
	BestScorePercent       float64    `json:"best_score_percent"`
	LastPlayedAt           *time.Time `json:"last_played_at"`
}

type SessionHistory struct {
	QuizSession
	Attempts []AttemptDetail `json:"attempts"`
}

type LeaderboardRow struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	LevelProgressView
	RankInLevel int `json:"rank_in_level"`
}

type UserDetail struct {
	User
	Stats
	LevelProgress  []LevelProgressView `json:"level_progress"`
	RecentSessions []QuizSession       `json:"recent_sessions"`
}

type QuestionStats struct {
	QuizID             int64    `json:"quiz_id"`
	Level              Level    `json:"level"`
	Prompt             string   `json:"question_text"`
	TotalAttempts      int      `json:"total_attempts"`
	CorrectAttempts    int      `json:"correct_attempts"`
	CorrectRatePercent *float64 `json:"correct_rate_percent"`
}
