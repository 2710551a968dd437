package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      domain.Role(r.Role),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:quiz,alias:q"`

	ID            int64   `bun:"id,pk,autoincrement"`
	Level         string  `bun:"level,notnull"`
	LessonID      *int64  `bun:"lesson_id"`
	Prompt        string  `bun:"question_text,notnull"`
	OptionA       string  `bun:"option_a,notnull"`
	OptionB       string  `bun:"option_b,notnull"`
	OptionC       string  `bun:"option_c,notnull"`
	OptionD       string  `bun:"option_d,notnull"`
	CorrectOption string  `bun:"correct_option,notnull"`
	Explanation   *string `bun:"explanation"`
}

func questionRowFrom(q domain.QuizQuestion) questionRow {
	return questionRow{
		ID:            q.ID,
		Level:         string(q.Level),
		Prompt:        q.Prompt,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectOption: string(q.CorrectOption),
		Explanation:   q.Explanation,
	}
}

type sessionRow struct {
	bun.BaseModel `bun:"table:quiz_sessions,alias:qs"`

	ID             string     `bun:"id,pk,type:uuid"`
	UserID         int64      `bun:"user_id,notnull"`
	Level          string     `bun:"level,notnull"`
	TotalQuestions int        `bun:"total_questions,notnull"`
	CorrectAnswers int        `bun:"correct_answers,notnull"`
	ScorePercent   float64    `bun:"score_percent,notnull"`
	Status         string     `bun:"status,notnull"`
	StartedAt      time.Time  `bun:"started_at,notnull"`
	CompletedAt    *time.Time `bun:"completed_at"`
}

func sessionRowFrom(s domain.QuizSession) sessionRow {
	return sessionRow{
		ID:             s.ID,
		UserID:         s.UserID,
		Level:          string(s.Level),
		TotalQuestions: s.TotalQuestions,
		CorrectAnswers: s.CorrectAnswers,
		ScorePercent:   s.ScorePercent,
		Status:         string(s.Status),
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
	}
}

func (r sessionRow) toDomain() domain.QuizSession {
	return domain.QuizSession{
		ID:             r.ID,
		UserID:         r.UserID,
		Level:          domain.Level(r.Level),
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		ScorePercent:   r.ScorePercent,
		Status:         domain.SessionStatus(r.Status),
		StartedAt:      r.StartedAt.UTC(),
		CompletedAt:    utcPtr(r.CompletedAt),
	}
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID             int64     `bun:"id,pk,autoincrement"`
	SessionID      string    `bun:"session_id,notnull,type:uuid"`
	UserID         int64     `bun:"user_id,notnull"`
	QuizID         int64     `bun:"quiz_id,notnull"`
	SelectedOption string    `bun:"selected_option,notnull"`
	IsCorrect      bool      `bun:"is_correct,notnull"`
	AnsweredAt     time.Time `bun:"answered_at,notnull"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_level_progress,alias:ulp"`

	ID                     int64      `bun:"id,pk,autoincrement"`
	UserID                 int64      `bun:"user_id,notnull"`
	Level                  string     `bun:"level,notnull"`
	TotalSessions          int        `bun:"total_sessions,notnull"`
	TotalQuestionsAnswered int        `bun:"total_questions_answered,notnull"`
	TotalCorrect           int        `bun:"total_correct,notnull"`
	BestScorePercent       float64    `bun:"best_score_percent,notnull"`
	LastPlayedAt           *time.Time `bun:"last_played_at"`
}

func (r progressRow) toDomain() domain.UserLevelProgress {
	return domain.UserLevelProgress{
		UserID:                 r.UserID,
		Level:                  domain.Level(r.Level),
		TotalSessions:          r.TotalSessions,
		TotalQuestionsAnswered: r.TotalQuestionsAnswered,
		TotalCorrect:           r.TotalCorrect,
		BestScorePercent:       r.BestScorePercent,
		LastPlayedAt:           utcPtr(r.LastPlayedAt),
	}
}

// attemptDetailRow is the attempts x quiz join read by history.
type attemptDetailRow struct {
	SessionID      string    `bun:"session_id"`
	QuizID         int64     `bun:"quiz_id"`
	Prompt         string    `bun:"question_text"`
	SelectedOption string    `bun:"selected_option"`
	CorrectOption  string    `bun:"correct_option"`
	IsCorrect      bool      `bun:"is_correct"`
	AnsweredAt     time.Time `bun:"answered_at"`
}

type sessionTotalsRow struct {
	UserID          int64      `bun:"user_id"`
	Sessions        int        `bun:"sessions"`
	Questions       int        `bun:"questions"`
	Correct         int        `bun:"correct"`
	ScoreSum        float64    `bun:"score_sum"`
	BestScore       float64    `bun:"best_score"`
	LastCompletedAt *time.Time `bun:"last_completed_at"`
}

type questionTotalsRow struct {
	QuizID          int64  `bun:"quiz_id"`
	Level           string `bun:"level"`
	Prompt          string `bun:"question_text"`
	Attempts        int    `bun:"attempts"`
	CorrectAttempts int    `bun:"correct_attempts"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
