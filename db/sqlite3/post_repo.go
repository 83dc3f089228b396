package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/contents"
)

const (
	tablePosts    = "posts"
	tablePostTags = "post_tags"
)

type PostRepository struct {
	db *sql.DB
}

var _ contents.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID         = "id"
	postFieldTitle      = "title"
	postFieldSlug       = "slug"
	postFieldBody       = "body"
	postFieldCategoryID = "category_id"
	postFieldPublished  = "published"
	postFieldCreatedAt  = "created_at"
	postFieldUpdatedAt  = "updated_at"
	postFieldDeletedAt  = "deleted_at"

	postTagFieldPostID = "post_id"
	postTagFieldTag    = "tag"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldSlug,
		postFieldBody,
		postFieldCategoryID,
		postFieldPublished,
		postFieldCreatedAt,
		postFieldUpdatedAt,
		postFieldDeletedAt,
	}
}

func scanPost(row sq.RowScanner) (*contents.Post, error) {
	var post contents.Post

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Body,
		&post.CategoryID,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *contents.Post) error {
	q := sq.Insert(tablePosts).
		Columns(postColumns()...).
		Values(
			post.ID,
			post.Title,
			post.Slug,
			post.Body,
			post.CategoryID,
			post.Published,
			post.CreatedAt,
			post.UpdatedAt,
			post.DeletedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	err = repo.replaceTags(ctx, post.ID, post.Tags)
	if err != nil {
		return err
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID string) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID, postFieldDeletedAt: nil})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	post.Tags, err = repo.loadTags(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (repo *PostRepository) FindBySlug(ctx context.Context, slug string) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldSlug: slug, postFieldDeletedAt: nil}).
		OrderBy(postFieldCreatedAt + " DESC").
		Limit(1)

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.PostBySlugNotFoundError{Slug: slug}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	post.Tags, err = repo.loadTags(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (repo *PostRepository) List(
	ctx context.Context,
	params *contents.ListPostsParams,
) ([]*contents.Post, error) {
	query := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldDeletedAt: nil}).
		OrderBy(postFieldCreatedAt + " DESC")

	if params.PublishedOnly {
		query = query.Where(sq.Eq{postFieldPublished: true})
	}

	if params.CategoryID != "" {
		query = query.Where(sq.Eq{postFieldCategoryID: params.CategoryID})
	}

	if params.Tag != "" {
		query = query.Where(
			postFieldID+" IN (SELECT "+postTagFieldPostID+" FROM "+tablePostTags+" WHERE "+postTagFieldTag+" = ?)",
			params.Tag,
		)
	}

	query = query.RunWith(runner(ctx, repo.db))

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post failed: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	for _, post := range posts {
		post.Tags, err = repo.loadTags(ctx, post.ID)
		if err != nil {
			return nil, err
		}
	}

	return posts, nil
}

func (repo *PostRepository) Update(ctx context.Context, post *contents.Post) error {
	q := sq.Update(tablePosts).
		Set(postFieldTitle, post.Title).
		Set(postFieldSlug, post.Slug).
		Set(postFieldBody, post.Body).
		Set(postFieldCategoryID, post.CategoryID).
		Set(postFieldPublished, post.Published).
		Set(postFieldUpdatedAt, post.UpdatedAt).
		Where(sq.Eq{postFieldID: post.ID, postFieldDeletedAt: nil})

	q = q.RunWith(runner(ctx, repo.db))

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return &contents.PostNotFoundError{ID: post.ID}
	}

	err = repo.replaceTags(ctx, post.ID, post.Tags)
	if err != nil {
		return err
	}

	return nil
}

func (repo *PostRepository) SoftDelete(ctx context.Context, postID string, at time.Time) error {
	q := sq.Update(tablePosts).
		Set(postFieldDeletedAt, at).
		Where(sq.Eq{postFieldID: postID, postFieldDeletedAt: nil})

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
		return &contents.PostNotFoundError{ID: postID}
	}

	return nil
}

// ListTags aggregates tag usage across published, non-deleted posts.
func (repo *PostRepository) ListTags(ctx context.Context) ([]*contents.TagCount, error) {
	q := sq.Select(postTagFieldTag, "COUNT(*) AS cnt").
		From(tablePostTags).
		Join(tablePosts + " ON " + tablePosts + "." + postFieldID + " = " + tablePostTags + "." + postTagFieldPostID).
		Where(sq.Eq{
			tablePosts + "." + postFieldDeletedAt: nil,
			tablePosts + "." + postFieldPublished: true,
		}).
		GroupBy(postTagFieldTag).
		OrderBy("cnt DESC", postTagFieldTag+" ASC")

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

	tags := make([]*contents.TagCount, 0)

	for rows.Next() {
		var tagCount contents.TagCount

		err := rows.Scan(&tagCount.Tag, &tagCount.Count)
		if err != nil {
			return nil, fmt.Errorf("scan tag count failed: %w", err)
		}

		tags = append(tags, &tagCount)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return tags, nil
}

func (repo *PostRepository) replaceTags(ctx context.Context, postID string, tags []string) error {
	del := sq.Delete(tablePostTags).
		Where(sq.Eq{postTagFieldPostID: postID})

	del = del.RunWith(runner(ctx, repo.db))

	_, err := del.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete post tags: %w", err)
	}

	if len(tags) == 0 {
		return nil
	}

	ins := sq.Insert(tablePostTags).
		Columns(postTagFieldPostID, postTagFieldTag)

	for _, tag := range tags {
		ins = ins.Values(postID, tag)
	}

	ins = ins.RunWith(runner(ctx, repo.db))

	_, err = ins.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert post tags: %w", err)
	}

	return nil
}

func (repo *PostRepository) loadTags(ctx context.Context, postID string) ([]string, error) {
	q := sq.Select(postTagFieldTag).
		From(tablePostTags).
		Where(sq.Eq{postTagFieldPostID: postID}).
		OrderBy(postTagFieldTag + " ASC")

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

	tags := make([]string, 0)

	for rows.Next() {
		var tag string

		err := rows.Scan(&tag)
		if err != nil {
			return nil, fmt.Errorf("scan tag failed: %w", err)
		}

		tags = append(tags, tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return tags, nil
}
