package discuss

import (
	"context"
	"fmt"
	"time"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
	StatusHidden  Status = "hidden"
)

type AuthorType string

const (
	AuthorTypeOAuth AuthorType = "oauth"
	AuthorTypeGuest AuthorType = "guest"
)

// Authorship is the flat persisted author shape shared by comments and
// guestbook entries: an author-kind discriminant plus mutually exclusive
// column groups. The tagged auth.Author union exists only in-flight;
// encoding to and from this shape happens at the service boundary.
type Authorship struct {
	AuthorType        AuthorType
	OAuthAccountID    *string
	GuestName         *string
	GuestEmail        *string
	GuestPasswordHash *string
}

// Comment belongs to exactly one post. Depth is 0 for roots and 1 for
// replies; a depth-1 comment can never be a parent.
type Comment struct {
	ID               string
	PostID           string
	ParentID         *string
	Depth            int
	ReplyToCommentID *string
	ReplyToName      *string
	Authorship
	Body      string
	IsSecret  bool
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) (err error)
	Find(ctx context.Context, id string) (comment *Comment, err error)
	ListActiveByPost(ctx context.Context, postID string) (comments []*Comment, err error)
	CountActiveByPost(ctx context.Context, postID string) (count int, err error)
	SoftDelete(ctx context.Context, id string, at time.Time) (err error)
}

type CommentNotFoundError struct {
	ID string
}

func (err CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment with id %q not found", err.ID)
}

type PostNotFoundError struct {
	PostID string
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %q not found", err.PostID)
}

// CrossPostReferenceError rejects parent or reply-to references that point
// at a comment on a different post.
type CrossPostReferenceError struct {
	CommentID string
	PostID    string
}

func (err CrossPostReferenceError) Error() string {
	return fmt.Sprintf("comment with id %q does not belong to post %q", err.CommentID, err.PostID)
}

type ReplyDepthError struct {
	ParentID string
}

func (err ReplyDepthError) Error() string {
	return "replies can only be nested one level deep"
}

type EmptyBodyError struct{}

func (err EmptyBodyError) Error() string {
	return "body must not be empty"
}

type InvalidGuestCredentialsError struct {
	Reason string
}

func (err InvalidGuestCredentialsError) Error() string {
	return fmt.Sprintf("invalid guest credentials: %s", err.Reason)
}

type MissingAuthorError struct{}

func (err MissingAuthorError) Error() string {
	return "request carries neither a session nor guest credentials"
}

type ForbiddenError struct {
	Reason string
}

func (err ForbiddenError) Error() string {
	return err.Reason
}
