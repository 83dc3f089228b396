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
	"github.com/harupress/harupress/guestbook"
)

const tableGuestbookEntries = "guestbook_entries"

type GuestbookEntryRepository struct {
	db *sql.DB
}

var _ guestbook.EntryRepository = (*GuestbookEntryRepository)(nil)

func NewGuestbookEntryRepository(db *sql.DB) *GuestbookEntryRepository {
	return &GuestbookEntryRepository{db: db}
}

const (
	entryFieldID                = "id"
	entryFieldParentID          = "parent_id"
	entryFieldAuthorType        = "author_type"
	entryFieldOAuthAccountID    = "oauth_account_id"
	entryFieldGuestName         = "guest_name"
	entryFieldGuestEmail        = "guest_email"
	entryFieldGuestPasswordHash = "guest_password_hash"
	entryFieldBody              = "body"
	entryFieldIsSecret          = "is_secret"
	entryFieldStatus            = "status"
	entryFieldCreatedAt         = "created_at"
	entryFieldUpdatedAt         = "updated_at"
	entryFieldDeletedAt         = "deleted_at"
)

func entryColumns() []string {
	return []string{
		entryFieldID,
		entryFieldParentID,
		entryFieldAuthorType,
		entryFieldOAuthAccountID,
		entryFieldGuestName,
		entryFieldGuestEmail,
		entryFieldGuestPasswordHash,
		entryFieldBody,
		entryFieldIsSecret,
		entryFieldStatus,
		entryFieldCreatedAt,
		entryFieldUpdatedAt,
		entryFieldDeletedAt,
	}
}

func scanEntry(row sq.RowScanner) (*guestbook.Entry, error) {
	var entry guestbook.Entry

	err := row.Scan(
		&entry.ID,
		&entry.ParentID,
		&entry.AuthorType,
		&entry.OAuthAccountID,
		&entry.GuestName,
		&entry.GuestEmail,
		&entry.GuestPasswordHash,
		&entry.Body,
		&entry.IsSecret,
		&entry.Status,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &entry, nil
}

func (repo *GuestbookEntryRepository) Insert(ctx context.Context, entry *guestbook.Entry) error {
	q := sq.Insert(tableGuestbookEntries).
		Columns(entryColumns()...).
		Values(
			entry.ID,
			entry.ParentID,
			entry.AuthorType,
			entry.OAuthAccountID,
			entry.GuestName,
			entry.GuestEmail,
			entry.GuestPasswordHash,
			entry.Body,
			entry.IsSecret,
			entry.Status,
			entry.CreatedAt,
			entry.UpdatedAt,
			entry.DeletedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *GuestbookEntryRepository) Find(ctx context.Context, id string) (*guestbook.Entry, error) {
	q := sq.Select(entryColumns()...).
		From(tableGuestbookEntries).
		Where(sq.Eq{entryFieldID: id})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &guestbook.EntryNotFoundError{ID: id}
		}

		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	return entry, nil
}

func (repo *GuestbookEntryRepository) ListActivePage(ctx context.Context, offset, limit int) ([]*guestbook.Entry, error) {
	q := sq.Select(entryColumns()...).
		From(tableGuestbookEntries).
		Where(sq.Eq{entryFieldStatus: discuss.StatusActive}).
		OrderBy(entryFieldCreatedAt+" ASC", "rowid ASC").
		Offset(uint64(offset)).
		Limit(uint64(limit))

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

	entries := make([]*guestbook.Entry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry failed: %w", err)
		}

		entries = append(entries, entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return entries, nil
}

func (repo *GuestbookEntryRepository) CountActive(ctx context.Context) (int, error) {
	q := sq.Select("COUNT(*)").
		From(tableGuestbookEntries).
		Where(sq.Eq{entryFieldStatus: discuss.StatusActive})

	q = q.RunWith(runner(ctx, repo.db))

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to scan count: %w", err)
	}

	return count, nil
}

func (repo *GuestbookEntryRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	q := sq.Update(tableGuestbookEntries).
		Set(entryFieldStatus, discuss.StatusDeleted).
		Set(entryFieldDeletedAt, at).
		Set(entryFieldUpdatedAt, at).
		Where(sq.Eq{
			entryFieldID:     id,
			entryFieldStatus: discuss.StatusActive,
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
		return &guestbook.EntryNotFoundError{ID: id}
	}

	return nil
}
