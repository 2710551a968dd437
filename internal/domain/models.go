package domain

import (
	"strings"
	"time"
)

// Level is a difficulty tier; it partitions both content and aggregates.
type Level string

const (
	LevelEasy         Level = "easy"
	LevelIntermediate Level = "intermediate"
	LevelHard         Level = "hard"
)

// Levels lists every level in reporting order.
var Levels = []Level{LevelEasy, LevelIntermediate, LevelHard}

// ParseLevel normalizes raw input and reports whether it names a known level.
func ParseLevel(raw string) (Level, bool) {
	level := Level(strings.ToLower(strings.TrimSpace(raw)))
	return level, level.Valid()
}

func (l Level) Valid() bool {
	return l.Order() >= 0
}

// Order is the position of the level in reporting order, -1 when unknown.
func (l Level) Order() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// Option is one of the four answer letters.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// ParseOption upper-cases raw input and reports whether it is A-D.
func ParseOption(raw string) (Option, bool) {
	opt := Option(strings.ToUpper(strings.TrimSpace(raw)))
	switch opt {
	case OptionA, OptionB, OptionC, OptionD:
		return opt, true
	}
	return "", false
}

// SessionStatus is the state of a quiz session. completed and abandoned are terminal.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

func ParseStatus(raw string) (SessionStatus, bool) {
	status := SessionStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
		return status, true
	}
	return "", false
}

// Role of a user as established by the auth subsystem.
type Role string

const (
	RoleLearner Role = "learner"
	RoleAdmin   Role = "admin"
)

// User is owned by the auth subsystem and only read here.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizQuestion is a content item including its answer key.
type QuizQuestion struct {
	ID            int64   `json:"quiz_id"`
	Level         Level   `json:"level"`
	Prompt        string  `json:"question_text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	CorrectOption Option  `json:"correct_option"`
	Explanation   *string `json:"explanation,omitempty"`
}

// PublicQuestion is what a learner sees: the answer key is stripped.
type PublicQuestion struct {
	ID          int64   `json:"quiz_id"`
	Level       Level   `json:"level"`
	Prompt      string  `json:"question_text"`
	OptionA     string  `json:"option_a"`
	OptionB     string  `json:"option_b"`
	OptionC     string  `json:"option_c"`
	OptionD     string  `json:"option_d"`
	Explanation *string `json:"explanation,omitempty"`
}

// Public drops the correct option.
func (q QuizQuestion) Public() PublicQuestion {
	return PublicQuestion{
		ID:          q.ID,
		Level:       q.Level,
		Prompt:      q.Prompt,
		OptionA:     q.OptionA,
		OptionB:     q.OptionB,
		OptionC:     q.OptionC,
		OptionD:     q.OptionD,
		Explanation: q.Explanation,
	}
}

// QuizSession is one bounded attempt.
type QuizSession struct {
	ID             string        `json:"session_id"`
	UserID         int64         `json:"user_id"`
	Level          Level         `json:"level"`
	TotalQuestions int           `json:"total_questions"`
	CorrectAnswers int           `json:"correct_answers"`
	ScorePercent   float64       `json:"score_percent"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at"`
}

// QuizAttempt is one recorded answer; unique per (SessionID, QuizID).
type QuizAttempt struct {
	SessionID      string    `json:"session_id"`
	UserID         int64     `json:"user_id"`
	QuizID         int64     `json:"quiz_id"`
	SelectedOption Option    `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// UserLevelProgress is the rolling aggregate of completed sessions for a (user, level).
type UserLevelProgress struct {
	UserID                 int64      `json:"user_id"`
	Level                  Level      `json:"level"`
	TotalSessions          int        `json:"total_sessions"`
	TotalQuestionsAnswered int        `json:"total_questions_answered"`
	TotalCorrect           int        `json:"total_correct"`
	BestScorePercent       float64    `json:"best_score_percent"`
	LastPlayedAt           *time.Time `json:"last_played_at"`
}

// ProgressDelta is what one completed session adds to its UserLevelProgress row.
type ProgressDelta struct {
	UserID         int64
	Level          Level
	TotalQuestions int
	CorrectAnswers int
	ScorePercent   float64
	PlayedAt       time.Time
}

// SessionTotals are raw sums over a user's completed sessions.
type SessionTotals struct {
	UserID          int64
	Sessions        int
	Questions       int
	Correct         int
	ScoreSum        float64
	BestScore       float64
	LastCompletedAt *time.Time
}

// QuestionTotals counts recorded attempts for one question.
type QuestionTotals struct {
	QuizID          int64
	Level           Level
	Prompt          string
	Attempts        int
	CorrectAttempts int
}

// AttemptDetail is an attempt joined with its question for history views.
type AttemptDetail struct {
	SessionID      string    `json:"session_id"`
	QuizID         int64     `json:"quiz_id"`
	Prompt         string    `json:"question_text"`
	SelectedOption Option    `json:"selected_option"`
	CorrectOption  Option    `json:"correct_option"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// SessionFilter narrows session listings. Nil fields are not applied.
type SessionFilter struct {
	UserID *int64
	Level  *Level
	Status *SessionStatus
	Limit  int
	Offset int
}

// ProgressFilter narrows UserLevelProgress listings.
type ProgressFilter struct {
	UserID     *int64
	Level      *Level
	OnlyPlayed bool
}
