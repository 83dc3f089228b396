package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/discuss"
	"github.com/harupress/harupress/stats"
)

const tablePostViewCounts = "post_view_counts"

type StatsRepository struct {
	db *sql.DB
}

var _ stats.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

const (
	viewCountFieldPostID    = "post_id"
	viewCountFieldViewCount = "view_count"
	viewCountFieldUpdatedAt = "updated_at"
)

func (repo *StatsRepository) IncrementPostView(ctx context.Context, postID string, at time.Time) error {
	q := sq.Insert(tablePostViewCounts).
		Columns(viewCountFieldPostID, viewCountFieldViewCount, viewCountFieldUpdatedAt).
		Values(postID, 1, at).
		Suffix("ON CONFLICT (" + viewCountFieldPostID + ") DO UPDATE SET " +
			viewCountFieldViewCount + " = " + viewCountFieldViewCount + " + 1, " +
			viewCountFieldUpdatedAt + " = excluded." + viewCountFieldUpdatedAt)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec upsert: %w", err)
	}

	return nil
}

// PostStats returns zeroed stats when the post has no recorded views yet.
func (repo *StatsRepository) PostStats(ctx context.Context, postID string) (*stats.PostStats, error) {
	q := sq.Select(viewCountFieldPostID, viewCountFieldViewCount, viewCountFieldUpdatedAt).
		From(tablePostViewCounts).
		Where(sq.Eq{viewCountFieldPostID: postID})

	q = q.RunWith(runner(ctx, repo.db))

	var res stats.PostStats

	err := q.QueryRowContext(ctx).Scan(&res.PostID, &res.ViewCount, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &stats.PostStats{PostID: postID}, nil
		}

		return nil, fmt.Errorf("failed to scan post stats: %w", err)
	}

	return &res, nil
}

func (repo *StatsRepository) SummaryCounts(ctx context.Context) (*stats.Summary, error) {
	var summary stats.Summary

	run := runner(ctx, repo.db)

	q := sq.Select("COALESCE(SUM(" + viewCountFieldViewCount + "), 0)").
		From(tablePostViewCounts).
		RunWith(run)

	err := q.QueryRowContext(ctx).Scan(&summary.TotalPostViews)
	if err != nil {
		return nil, fmt.Errorf("failed to scan total post views: %w", err)
	}

	q = sq.Select("COUNT(*)").
		From(tablePosts).
		Where(sq.Eq{postFieldPublished: true, postFieldDeletedAt: nil}).
		RunWith(run)

	err = q.QueryRowContext(ctx).Scan(&summary.PublishedPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan published posts: %w", err)
	}

	q = sq.Select("COUNT(*)").
		From(tableComments).
		Where(sq.Eq{commentFieldStatus: discuss.StatusActive}).
		RunWith(run)

	err = q.QueryRowContext(ctx).Scan(&summary.ActiveComments)
	if err != nil {
		return nil, fmt.Errorf("failed to scan active comments: %w", err)
	}

	q = sq.Select("COUNT(*)").
		From(tableGuestbookEntries).
		Where(sq.Eq{entryFieldStatus: discuss.StatusActive}).
		RunWith(run)

	err = q.QueryRowContext(ctx).Scan(&summary.GuestbookEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to scan guestbook entries: %w", err)
	}

	q = sq.Select("COUNT(*)").
		From(tableAccounts).
		Where(sq.Eq{accountFieldDeletedAt: nil}).
		RunWith(run)

	err = q.QueryRowContext(ctx).Scan(&summary.RegisteredUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to scan registered users: %w", err)
	}

	return &summary, nil
}
