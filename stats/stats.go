package stats

import (
	"context"
	"fmt"
	"time"
)

const DefaultDedupWindow = time.Hour

// PostStats holds the accumulated view count for a single post.
type PostStats struct {
	PostID    string    `json:"postId"`
	ViewCount int64     `json:"viewCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary aggregates site-wide counters for the admin dashboard.
type Summary struct {
	TotalPostViews   int64 `json:"totalPostViews"`
	PublishedPosts   int64 `json:"publishedPosts"`
	ActiveComments   int64 `json:"activeComments"`
	GuestbookEntries int64 `json:"guestbookEntries"`
	RegisteredUsers  int64 `json:"registeredUsers"`
}

type StatsRepository interface {
	IncrementPostView(ctx context.Context, postID string, at time.Time) error
	PostStats(ctx context.Context, postID string) (*PostStats, error)
	SummaryCounts(ctx context.Context) (*Summary, error)
}

type Service struct {
	statsRepo StatsRepository
	viewCache ViewCache
	window    time.Duration
}

func NewService(statsRepo StatsRepository, viewCache ViewCache, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultDedupWindow
	}

	return &Service{
		statsRepo: statsRepo,
		viewCache: viewCache,
		window:    window,
	}
}

// RecordPostView counts a view once per visitor per dedup window.
// Repeat views inside the window are dropped silently.
func (svc *Service) RecordPostView(ctx context.Context, postID, visitorKey string) error {
	firstSeen, err := svc.viewCache.MarkSeen(ctx, postID+":"+visitorKey, svc.window)
	if err != nil {
		return fmt.Errorf("failed to check view cache: %w", err)
	}

	if !firstSeen {
		return nil
	}

	err = svc.statsRepo.IncrementPostView(ctx, postID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment post view: %w", err)
	}

	return nil
}

func (svc *Service) GetPostStats(ctx context.Context, postID string) (*PostStats, error) {
	res, err := svc.statsRepo.PostStats(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post stats: %w", err)
	}

	return res, nil
}

func (svc *Service) GetSummary(ctx context.Context) (*Summary, error) {
	res, err := svc.statsRepo.SummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats summary: %w", err)
	}

	return res, nil
}
