package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/discuss"
)

const tableComments = "comments"

type CommentRepository struct {
	db *sql.DB
}

var _ discuss.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const (
	commentFieldID                = "id"
	commentFieldPostID            = "post_id"
	commentFieldParentID          = "parent_id"
	commentFieldDepth             = "depth"
	commentFieldReplyToCommentID  = "reply_to_comment_id"
	commentFieldReplyToName       = "reply_to_name"
	commentFieldAuthorType        = "author_type"
	commentFieldOAuthAccountID    = "oauth_account_id"
	commentFieldGuestName         = "guest_name"
	commentFieldGuestEmail        = "guest_email"
	commentFieldGuestPasswordHash = "guest_password_hash"
	commentFieldBody              = "body"
	commentFieldIsSecret          = "is_secret"
	commentFieldStatus            = "status"
	commentFieldCreatedAt         = "created_at"
	commentFieldUpdatedAt         = "updated_at"
	commentFieldDeletedAt         = "deleted_at"
)

func commentColumns() []string {
	return []string{
		commentFieldID,
		commentFieldPostID,
		commentFieldParentID,
		commentFieldDepth,
		commentFieldReplyToCommentID,
		commentFieldReplyToName,
		commentFieldAuthorType,
		commentFieldOAuthAccountID,
		commentFieldGuestName,
		commentFieldGuestEmail,
		commentFieldGuestPasswordHash,
		commentFieldBody,
		commentFieldIsSecret,
		commentFieldStatus,
		commentFieldCreatedAt,
		commentFieldUpdatedAt,
		commentFieldDeletedAt,
	}
}

func scanComment(row sq.RowScanner) (*discuss.Comment, error) {
	var comment discuss.Comment

	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.ParentID,
		&comment.Depth,
		&comment.ReplyToCommentID,
		&comment.ReplyToName,
		&comment.AuthorType,
		&comment.OAuthAccountID,
		&comment.GuestName,
		&comment.GuestEmail,
		&comment.GuestPasswordHash,
		&comment.Body,
		&comment.IsSecret,
		&comment.Status,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &comment, nil
}

func (repo *CommentRepository) Insert(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Insert(tableComments).
		Columns(commentColumns()...).
		Values(
			comment.ID,
			comment.PostID,
			comment.ParentID,
			comment.Depth,
			comment.ReplyToCommentID,
			comment.ReplyToName,
			comment.AuthorType,
			comment.OAuthAccountID,
			comment.GuestName,
			comment.GuestEmail,
			comment.GuestPasswordHash,
			comment.Body,
			comment.IsSecret,
			comment.Status,
			comment.CreatedAt,
			comment.UpdatedAt,
			comment.DeletedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *CommentRepository) Find(ctx context.Context, id string) (*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldID: id})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &discuss.CommentNotFoundError{ID: id}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

// ListActiveByPost returns active comments in insertion order; creation
// timestamps are second-resolution in practice, so rowid breaks ties.
func (repo *CommentRepository) ListActiveByPost(ctx context.Context, postID string) ([]*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{
			commentFieldPostID: postID,
			commentFieldStatus: discuss.StatusActive,
		}).
		OrderBy(commentFieldCreatedAt+" ASC", "rowid ASC")

	q = q.RunWith(runner(ctx, repo.db))

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	comments := make([]*discuss.Comment, 0)

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}

		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return comments, nil
}

func (repo *CommentRepository) CountActiveByPost(ctx context.Context, postID string) (int, error) {
	q := sq.Select("COUNT(*)").
		From(tableComments).
		Where(sq.Eq{
			commentFieldPostID: postID,
			commentFieldStatus: discuss.StatusActive,
		})

	q = q.RunWith(runner(ctx, repo.db))

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}

func (repo *CommentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := sq.Update(tableComments).
		Set(commentFieldStatus, discuss.StatusDeleted).
		Set(commentFieldDeletedAt, at).
		Set(commentFieldUpdatedAt, at).
		Where(sq.Eq{
			commentFieldID:     id,
			commentFieldStatus: discuss.StatusActive,
		})

	q = q.RunWith(runner(ctx, repo.db))

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec soft delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return &discuss.CommentNotFoundError{ID: id}
	}

	return nil
}
