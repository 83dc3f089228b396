package stats

import (
	"context"
	"sync"
	"time"
)

// ViewCache answers "has this view key been seen within the dedup window?".
// MarkSeen records the key and reports whether this was its first sighting.
type ViewCache interface {
	MarkSeen(ctx context.Context, key string, window time.Duration) (firstSeen bool, err error)
}

const memoryCacheCapacity = 100_000

// MemoryViewCache deduplicates view keys in-process with two rotating bloom
// filters: the current window and the previous one. Memory stays bounded
// regardless of traffic; the price is that a false positive drops a view,
// which is acceptable for pageview counting. The clock is injected so tests
// can move time.
type MemoryViewCache struct {
	mu        sync.Mutex
	now       func() time.Time
	current   *bloomFilter
	previous  *bloomFilter
	rotatedAt time.Time
}

func NewMemoryViewCache(now func() time.Time) *MemoryViewCache {
	if now == nil {
		now = time.Now
	}

	return &MemoryViewCache{
		now:       now,
		current:   newBloomFilter(memoryCacheCapacity, 0.01),
		previous:  newBloomFilter(memoryCacheCapacity, 0.01),
		rotatedAt: now(),
	}
}

func (cache *MemoryViewCache) MarkSeen(_ context.Context, key string, window time.Duration) (bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	timeNow := cache.now()

	if timeNow.Sub(cache.rotatedAt) >= window {
		cache.previous = cache.current
		cache.current = newBloomFilter(memoryCacheCapacity, 0.01)
		cache.rotatedAt = timeNow
	}

	if cache.current.Test(key) || cache.previous.Test(key) {
		return false, nil
	}

	cache.current.Add(key)

	return true, nil
}
