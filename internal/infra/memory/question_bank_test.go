package memory

import (
	"context"
	"testing"

	"quiz-progress-service/internal/domain"
)

func TestQuestionBankDrawsWithoutReplacement(t *testing.T) {
	bank := NewQuestionBank(sampleQuestions())

	drawn, err := bank.Draw(context.Background(), domain.LevelEasy, 10)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(drawn) != 3 {
		t.Fatalf("expected the whole easy pool of 3, got %d", len(drawn))
	}
	seen := map[int64]bool{}
	for _, q := range drawn {
		if q.Level != domain.LevelEasy {
			t.Fatalf("drew question of level %s", q.Level)
		}
		if seen[q.ID] {
			t.Fatalf("question %d drawn twice", q.ID)
		}
		seen[q.ID] = true
	}

	two, _ := bank.Draw(context.Background(), domain.LevelEasy, 2)
	if len(two) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(two))
	}

	none, _ := bank.Draw(context.Background(), domain.LevelIntermediate, 5)
	if len(none) != 0 {
		t.Fatalf("expected empty pool, got %d", len(none))
	}
}
