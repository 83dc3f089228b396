package contents

import (
	"context"
	"fmt"
	"time"
)

type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

type CategoryRepository interface {
	Insert(ctx context.Context, category *Category) (err error)
	Find(ctx context.Context, categoryID string) (category *Category, err error)
	FindBySlug(ctx context.Context, slug string) (category *Category, err error)
	List(ctx context.Context) (categories []*Category, err error)
	Update(ctx context.Context, category *Category) (err error)
	// Delete removes the category and detaches its posts.
	Delete(ctx context.Context, categoryID string) (err error)
}

type CategoryNotFoundError struct {
	ID string
}

func (err CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category with id %q not found", err.ID)
}

type CategoryBySlugNotFoundError struct {
	Slug string
}

func (err CategoryBySlugNotFoundError) Error() string {
	return fmt.Sprintf("category with slug %q not found", err.Slug)
}

type CategorySlugExistsError struct {
	Slug string
}

func (err CategorySlugExistsError) Error() string {
	return fmt.Sprintf("category with slug %q already exists", err.Slug)
}
