package guestbook

import (
	"context"
	"fmt"
	"time"

	"github.com/harupress/harupress/discuss"
)

// Entry is a site-wide guestbook entry. It shares the comment moderation
// model but carries no post association and no depth column: nesting is a
// single parent link, checked only for existence at write time.
type Entry struct {
	ID       string
	ParentID *string
	discuss.Authorship
	Body      string
	IsSecret  bool
	Status    discuss.Status
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type EntryRepository interface {
	Insert(ctx context.Context, entry *Entry) (err error)
	Find(ctx context.Context, id string) (entry *Entry, err error)
	ListActivePage(ctx context.Context, offset, limit int) (entries []*Entry, err error)
	CountActive(ctx context.Context) (count int, err error)
	SoftDelete(ctx context.Context, id string, at time.Time) (err error)
}

type EntryNotFoundError struct {
	ID string
}

func (err EntryNotFoundError) Error() string {
	return fmt.Sprintf("guestbook entry with id %q not found", err.ID)
}
