package memory

import (
	"context"
	"math/rand"

	"quiz-progress-service/internal/domain"
)

// QuestionBank is a static question source backed by a slice (useful for tests/demos).
type QuestionBank struct {
	questions []domain.QuizQuestion
	byID      map[int64]domain.QuizQuestion
}

func NewQuestionBank(questions []domain.QuizQuestion) *QuestionBank {
	byID := make(map[int64]domain.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &QuestionBank{questions: questions, byID: byID}
}

// Draw shuffles the level's pool and returns at most n questions.
func (b *QuestionBank) Draw(_ context.Context, level domain.Level, n int) ([]domain.QuizQuestion, error) {
	pool := make([]domain.QuizQuestion, 0, len(b.questions))
	for _, q := range b.questions {
		if q.Level == level {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool, nil
}

func (b *QuestionBank) AnswerKey(_ context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, error) {
	key := make(map[int64]domain.KeyEntry, len(quizIDs))
	for _, id := range quizIDs {
		if q, ok := b.byID[id]; ok {
			key[id] = domain.KeyEntry{Level: q.Level, Correct: q.CorrectOption}
		}
	}
	return key, nil
}

// Question looks up a single question by id.
func (b *QuestionBank) Question(id int64) (domain.QuizQuestion, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// All returns every question in insertion order.
func (b *QuestionBank) All() []domain.QuizQuestion {
	return b.questions
}
