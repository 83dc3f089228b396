package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisViewCache deduplicates view keys in redis, so multiple instances
// share one dedup window. Keys expire on their own via TTL.
type RedisViewCache struct {
	client *redis.Client
	prefix string
}

func NewRedisViewCache(redisURL string) (*RedisViewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisViewCache{client: client, prefix: "view:"}, nil
}

func NewRedisViewCacheWithClient(client *redis.Client) *RedisViewCache {
	return &RedisViewCache{client: client, prefix: "view:"}
}

func (cache *RedisViewCache) MarkSeen(ctx context.Context, key string, window time.Duration) (bool, error) {
	firstSeen, err := cache.client.SetNX(ctx, cache.prefix+key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark view key: %w", err)
	}

	return firstSeen, nil
}

func (cache *RedisViewCache) Close() error {
	return cache.client.Close()
}
