package redis

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// AnswerKeyCache caches answer keys in Redis and falls back to the source on a miss.
// Each question is stored as: SET quiz:{quizID}:answer "{level}|{option}"
// Draws always go to the source.
type AnswerKeyCache struct {
	client *redis.Client
	source app.QuestionSource
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, source app.QuestionSource, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var _ app.QuestionSource = (*AnswerKeyCache)(nil)

func (c *AnswerKeyCache) Draw(ctx context.Context, level domain.Level, n int) ([]domain.QuizQuestion, error) {
	return c.source.Draw(ctx, level, n)
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, error) {
	key, missing := c.lookup(ctx, quizIDs)
	if len(missing) == 0 {
		return key, nil
	}

	loaded, err, _ := c.sf.Do(flightKey(missing), func() (interface{}, error) {
		entries, err := c.source.AnswerKey(ctx, missing)
		if err != nil {
			return nil, err
		}
		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for id, entry := range entries {
			pipe.Set(ctx, answerKey(id), encodeEntry(entry), ttl)
		}
		// a failed write only costs a later reload
		_, _ = pipe.Exec(ctx)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	for id, entry := range loaded.(map[int64]domain.KeyEntry) {
		key[id] = entry
	}
	return key, nil
}

// lookup reads every id with one MGET. A Redis failure reports every id as missing.
func (c *AnswerKeyCache) lookup(ctx context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, []int64) {
	key := make(map[int64]domain.KeyEntry, len(quizIDs))
	if len(quizIDs) == 0 {
		return key, nil
	}
	keys := make([]string, len(quizIDs))
	for i, id := range quizIDs {
		keys[i] = answerKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return key, quizIDs
	}

	var missing []int64
	for i, id := range quizIDs {
		raw, ok := values[i].(string)
		if !ok {
			missing = append(missing, id)
			continue
		}
		entry, ok := decodeEntry(raw)
		if !ok {
			missing = append(missing, id)
			continue
		}
		key[id] = entry
	}
	return key, missing
}

func answerKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":answer"
}

func encodeEntry(e domain.KeyEntry) string {
	return string(e.Level) + "|" + string(e.Correct)
}

func decodeEntry(raw string) (domain.KeyEntry, bool) {
	levelRaw, optionRaw, found := strings.Cut(raw, "|")
	if !found {
		return domain.KeyEntry{}, false
	}
	level, ok := domain.ParseLevel(levelRaw)
	if !ok {
		return domain.KeyEntry{}, false
	}
	option, ok := domain.ParseOption(optionRaw)
	if !ok {
		return domain.KeyEntry{}, false
	}
	return domain.KeyEntry{Level: level, Correct: option}, true
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func flightKey(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
