package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/auth"
)

const tableAdmins = "admins"

type AdminRepository struct {
	db *sql.DB
}

var _ auth.AdminRepository = (*AdminRepository)(nil)

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

const (
	adminFieldID           = "id"
	adminFieldUsername     = "username"
	adminFieldPasswordHash = "password_hash"
	adminFieldRegisteredAt = "registered_at"
)

func adminColumns() []string {
	return []string{
		adminFieldID,
		adminFieldUsername,
		adminFieldPasswordHash,
		adminFieldRegisteredAt,
	}
}

func scanAdmin(row sq.RowScanner) (*auth.Admin, error) {
	var admin auth.Admin

	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &admin, nil
}

func (repo *AdminRepository) Insert(ctx context.Context, admin *auth.Admin) error {
	q := sq.Insert(tableAdmins).
		Columns(adminColumns()...).
		Values(admin.ID, admin.Username, admin.PasswordHash, admin.RegisteredAt)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *AdminRepository) Find(ctx context.Context, adminID string) (*auth.Admin, error) {
	q := sq.Select(adminColumns()...).
		From(tableAdmins).
		Where(sq.Eq{adminFieldID: adminID})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &auth.AdminNotFoundError{ID: adminID}
		}

		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}

	return admin, nil
}

func (repo *AdminRepository) FindByUsername(ctx context.Context, username string) (*auth.Admin, error) {
	q := sq.Select(adminColumns()...).
		From(tableAdmins).
		Where(sq.Eq{adminFieldUsername: username})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &auth.AdminByUsernameNotFoundError{Username: username}
		}

		return nil, fmt.Errorf("failed to scan admin: %w", err)
	}

	return admin, nil
}

func (repo *AdminRepository) Count(ctx context.Context) (int, error) {
	q := sq.Select("COUNT(*)").From(tableAdmins)

	q = q.RunWith(runner(ctx, repo.db))

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}
