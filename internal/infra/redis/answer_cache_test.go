package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

func TestAnswerKeyCacheStoresInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{QuestionBank: memory.NewQuestionBank(sampleQuestions())}
	cache := NewAnswerKeyCache(newClient(mr), source, time.Minute)
	ctx := context.Background()

	key, err := cache.AnswerKey(ctx, []int64{1, 2, 99})
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if len(key) != 2 || key[1].Correct != domain.OptionB || key[2].Level != domain.LevelHard {
		t.Fatalf("unexpected key %+v", key)
	}
	if source.keyCalls() != 1 {
		t.Fatalf("expected source called once, got %d", source.keyCalls())
	}
	if got, _ := mr.Get("quiz:1:answer"); got != "easy|B" {
		t.Fatalf("expected cached entry, got %q", got)
	}
	if ttl := mr.TTL("quiz:1:answer"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %v", ttl)
	}

	// cached ids stay out of the source
	if _, err := cache.AnswerKey(ctx, []int64{1, 2}); err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if source.keyCalls() != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.keyCalls())
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cache.AnswerKey(ctx, []int64{1}); err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if source.keyCalls() != 2 {
		t.Fatalf("expected reload after expiry, source calls=%d", source.keyCalls())
	}
}

func TestAnswerKeyCacheIgnoresCorruptEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	_ = mr.Set("quiz:1:answer", "garbage")

	source := &countingSource{QuestionBank: memory.NewQuestionBank(sampleQuestions())}
	cache := NewAnswerKeyCache(newClient(mr), source, time.Minute)

	key, err := cache.AnswerKey(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if key[1].Correct != domain.OptionB || source.keyCalls() != 1 {
		t.Fatalf("expected reload from source, got %+v after %d calls", key, source.keyCalls())
	}
}

func TestAnswerKeyCacheFallsBackWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	source := &countingSource{QuestionBank: memory.NewQuestionBank(sampleQuestions())}
	cache := NewAnswerKeyCache(client, source, time.Minute)

	key, err := cache.AnswerKey(context.Background(), []int64{2})
	if err != nil {
		t.Fatalf("answer key: %v", err)
	}
	if key[2].Correct != domain.OptionD {
		t.Fatalf("expected source answer, got %+v", key)
	}
}

type countingSource struct {
	*memory.QuestionBank
	mu    sync.Mutex
	calls int
}

func (s *countingSource) AnswerKey(ctx context.Context, ids []int64) (map[int64]domain.KeyEntry, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.QuestionBank.AnswerKey(ctx, ids)
}

func (s *countingSource) keyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sampleQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{ID: 1, Level: domain.LevelEasy, Prompt: "Translate 'hello'", OptionA: "adios", OptionB: "hola", OptionC: "gracias", OptionD: "por favor", CorrectOption: domain.OptionB},
		{ID: 2, Level: domain.LevelHard, Prompt: "Pick the subjunctive", OptionA: "es", OptionB: "está", OptionC: "era", OptionD: "sea", CorrectOption: domain.OptionD},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
