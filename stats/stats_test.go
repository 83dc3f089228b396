package stats_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harupress/harupress/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{counts: make(map[string]int64)}
}

func (repo *fakeStatsRepo) IncrementPostView(_ context.Context, postID string, _ time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.counts[postID]++

	return nil
}

func (repo *fakeStatsRepo) PostStats(_ context.Context, postID string) (*stats.PostStats, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return &stats.PostStats{PostID: postID, ViewCount: repo.counts[postID]}, nil
}

func (repo *fakeStatsRepo) SummaryCounts(_ context.Context) (*stats.Summary, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var total int64
	for _, count := range repo.counts {
		total += count
	}

	return &stats.Summary{TotalPostViews: total}, nil
}

func TestRecordPostView(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("repeat views inside the window count once", func(t *testing.T) {
		t.Parallel()

		repo := newFakeStatsRepo()
		svc := stats.NewService(repo, stats.NewMemoryViewCache(nil), time.Hour)

		for range 3 {
			require.NoError(t, svc.RecordPostView(ctx, "post-1", "visitor-a"))
		}

		res, err := svc.GetPostStats(ctx, "post-1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.ViewCount)
	})

	t.Run("distinct visitors each count", func(t *testing.T) {
		t.Parallel()

		repo := newFakeStatsRepo()
		svc := stats.NewService(repo, stats.NewMemoryViewCache(nil), time.Hour)

		require.NoError(t, svc.RecordPostView(ctx, "post-1", "visitor-a"))
		require.NoError(t, svc.RecordPostView(ctx, "post-1", "visitor-b"))

		res, err := svc.GetPostStats(ctx, "post-1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.ViewCount)
	})

	t.Run("same visitor on different posts counts per post", func(t *testing.T) {
		t.Parallel()

		repo := newFakeStatsRepo()
		svc := stats.NewService(repo, stats.NewMemoryViewCache(nil), time.Hour)

		require.NoError(t, svc.RecordPostView(ctx, "post-1", "visitor-a"))
		require.NoError(t, svc.RecordPostView(ctx, "post-2", "visitor-a"))

		summary, err := svc.GetSummary(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, summary.TotalPostViews)
	})
}

func TestMemoryViewCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first sighting only", func(t *testing.T) {
		t.Parallel()

		cache := stats.NewMemoryViewCache(nil)

		firstSeen, err := cache.MarkSeen(ctx, "key", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)

		firstSeen, err = cache.MarkSeen(ctx, "key", time.Hour)
		require.NoError(t, err)
		assert.False(t, firstSeen)
	})

	t.Run("key is forgotten after two window rotations", func(t *testing.T) {
		t.Parallel()

		timeNow := time.Now()

		var mu sync.Mutex

		now := func() time.Time {
			mu.Lock()
			defer mu.Unlock()

			return timeNow
		}

		advance := func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()

			timeNow = timeNow.Add(d)
		}

		cache := stats.NewMemoryViewCache(now)

		firstSeen, err := cache.MarkSeen(ctx, "key", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)

		// one window later the key sits in the previous filter
		advance(time.Hour)

		firstSeen, err = cache.MarkSeen(ctx, "key", time.Hour)
		require.NoError(t, err)
		assert.False(t, firstSeen)

		// that sighting did not re-add it, so the next rotation drops it
		advance(time.Hour)

		firstSeen, err = cache.MarkSeen(ctx, "other", time.Hour) // trigger rotation
		require.NoError(t, err)
		assert.True(t, firstSeen)

		firstSeen, err = cache.MarkSeen(ctx, "key", time.Hour)
		require.NoError(t, err)
		assert.True(t, firstSeen)
	})
}
