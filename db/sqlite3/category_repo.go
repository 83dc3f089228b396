package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/contents"
)

const tableCategories = "categories"

type CategoryRepository struct {
	db *sql.DB
}

var _ contents.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const (
	categoryFieldID          = "id"
	categoryFieldName        = "name"
	categoryFieldSlug        = "slug"
	categoryFieldDescription = "description"
	categoryFieldCreatedAt   = "created_at"
)

func categoryColumns() []string {
	return []string{
		categoryFieldID,
		categoryFieldName,
		categoryFieldSlug,
		categoryFieldDescription,
		categoryFieldCreatedAt,
	}
}

func scanCategory(row sq.RowScanner) (*contents.Category, error) {
	var category contents.Category

	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &category, nil
}

func (repo *CategoryRepository) Insert(ctx context.Context, category *contents.Category) error {
	q := sq.Insert(tableCategories).
		Columns(categoryColumns()...).
		Values(
			category.ID,
			category.Name,
			category.Slug,
			category.Description,
			category.CreatedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *CategoryRepository) Find(ctx context.Context, categoryID string) (*contents.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		Where(sq.Eq{categoryFieldID: categoryID})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.CategoryNotFoundError{ID: categoryID}
		}

		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	return category, nil
}

func (repo *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*contents.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		Where(sq.Eq{categoryFieldSlug: slug})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.CategoryBySlugNotFoundError{Slug: slug}
		}

		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	return category, nil
}

func (repo *CategoryRepository) List(ctx context.Context) ([]*contents.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		OrderBy(categoryFieldName + " ASC")

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

	categories := make([]*contents.Category, 0)

	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category failed: %w", err)
		}

		categories = append(categories, category)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return categories, nil
}

func (repo *CategoryRepository) Update(ctx context.Context, category *contents.Category) error {
	q := sq.Update(tableCategories).
		Set(categoryFieldName, category.Name).
		Set(categoryFieldDescription, category.Description).
		Where(sq.Eq{categoryFieldID: category.ID})

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
		return &contents.CategoryNotFoundError{ID: category.ID}
	}

	return nil
}

// Delete removes the category; posts fall back to no category via the
// foreign key's ON DELETE SET NULL.
func (repo *CategoryRepository) Delete(ctx context.Context, categoryID string) error {
	q := sq.Delete(tableCategories).
		Where(sq.Eq{categoryFieldID: categoryID})

	q = q.RunWith(runner(ctx, repo.db))

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return &contents.CategoryNotFoundError{ID: categoryID}
	}

	return nil
}
