package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/harupress/harupress/stats"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisViewCache(t *testing.T) (*stats.RedisViewCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return stats.NewRedisViewCacheWithClient(client), srv
}

func TestRedisViewCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first sighting only", func(t *testing.T) {
		t.Parallel()

		cache, _ := newRedisViewCache(t)

		firstSeen, err := cache.MarkSeen(ctx, "post-1:visitor-a", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)

		firstSeen, err = cache.MarkSeen(ctx, "post-1:visitor-a", time.Hour)
		require.NoError(t, err)
		assert.False(t, firstSeen)

		firstSeen, err = cache.MarkSeen(ctx, "post-1:visitor-b", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)
	})

	t.Run("key expires with the window", func(t *testing.T) {
		t.Parallel()

		cache, srv := newRedisViewCache(t)

		firstSeen, err := cache.MarkSeen(ctx, "post-1:visitor-a", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)

		srv.FastForward(time.Hour + time.Minute)

		firstSeen, err = cache.MarkSeen(ctx, "post-1:visitor-a", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)
	})
}
