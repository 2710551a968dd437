package memory

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// AnswerKeyCache caches answer keys in process with TTL to avoid repeated DB hits.
// Draws are passed straight through so question order stays unpredictable.
type AnswerKeyCache struct {
	source app.QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedKey
}

type cachedKey struct {
	entry     domain.KeyEntry
	expiresAt time.Time
}

func NewAnswerKeyCache(source app.QuestionSource, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedKey),
	}
}

func (c *AnswerKeyCache) Draw(ctx context.Context, level domain.Level, n int) ([]domain.QuizQuestion, error) {
	return c.source.Draw(ctx, level, n)
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, quizIDs []int64) (map[int64]domain.KeyEntry, error) {
	key, missing := c.lookup(quizIDs)
	if len(missing) == 0 {
		return key, nil
	}

	loaded, err, _ := c.sf.Do(flightKey(missing), func() (interface{}, error) {
		entries, err := c.source.AnswerKey(ctx, missing)
		if err != nil {
			return nil, err
		}
		expiresAt := c.clock().Add(c.ttlWithJitter())
		c.mu.Lock()
		for id, entry := range entries {
			c.cache[id] = cachedKey{entry: entry, expiresAt: expiresAt}
		}
		c.mu.Unlock()
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

func (c *AnswerKeyCache) lookup(quizIDs []int64) (map[int64]domain.KeyEntry, []int64) {
	now := c.clock()
	key := make(map[int64]domain.KeyEntry, len(quizIDs))
	var missing []int64

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range quizIDs {
		if cached, ok := c.cache[id]; ok && cached.expiresAt.After(now) {
			key[id] = cached.entry
			continue
		}
		missing = append(missing, id)
	}
	return key, missing
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// flightKey identifies a set of ids independent of order.
func flightKey(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
