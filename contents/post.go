package contents

import (
	"context"
	"fmt"
	"time"
)

type Post struct {
	ID         string
	Title      string
	Slug       string
	Body       string
	CategoryID *string
	Tags       []string
	Published  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

type ListPostsParams struct {
	PublishedOnly bool
	CategoryID    string
	Tag           string
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID string) (post *Post, err error)
	FindBySlug(ctx context.Context, slug string) (post *Post, err error)
	List(ctx context.Context, params *ListPostsParams) (posts []*Post, err error)
	Update(ctx context.Context, post *Post) (err error)
	SoftDelete(ctx context.Context, postID string, at time.Time) (err error)
	ListTags(ctx context.Context) (tags []*TagCount, err error)
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type PostNotFoundError struct {
	ID string
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %q not found", err.ID)
}

type PostBySlugNotFoundError struct {
	Slug string
}

func (err PostBySlugNotFoundError) Error() string {
	return fmt.Sprintf("post with slug %q not found", err.Slug)
}

type PostSlugExistsError struct {
	Slug string
}

func (err PostSlugExistsError) Error() string {
	return fmt.Sprintf("post with slug %q already exists", err.Slug)
}

type InvalidSlugError struct {
	Slug string
}

func (err InvalidSlugError) Error() string {
	return fmt.Sprintf("slug %q must contain only lowercase letters, digits and hyphens", err.Slug)
}

type InvalidPostError struct {
	Reason string
}

func (err InvalidPostError) Error() string {
	return fmt.Sprintf("invalid post: %s", err.Reason)
}
