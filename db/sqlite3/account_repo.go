package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/auth"
)

const tableAccounts = "accounts"

type AccountRepository struct {
	db *sql.DB
}

var _ auth.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const (
	accountFieldID             = "id"
	accountFieldProvider       = "provider"
	accountFieldProviderUserID = "provider_user_id"
	accountFieldName           = "name"
	accountFieldEmail          = "email"
	accountFieldAvatarURL      = "avatar_url"
	accountFieldRegisteredAt   = "registered_at"
	accountFieldDeletedAt      = "deleted_at"
)

func accountColumns() []string {
	return []string{
		accountFieldID,
		accountFieldProvider,
		accountFieldProviderUserID,
		accountFieldName,
		accountFieldEmail,
		accountFieldAvatarURL,
		accountFieldRegisteredAt,
		accountFieldDeletedAt,
	}
}

func scanAccount(row sq.RowScanner) (*auth.Account, error) {
	var account auth.Account

	err := row.Scan(
		&account.ID,
		&account.Provider,
		&account.ProviderUserID,
		&account.Name,
		&account.Email,
		&account.AvatarURL,
		&account.RegisteredAt,
		&account.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &account, nil
}

func (repo *AccountRepository) Insert(ctx context.Context, account *auth.Account) error {
	q := sq.Insert(tableAccounts).
		Columns(accountColumns()...).
		Values(
			account.ID,
			account.Provider,
			account.ProviderUserID,
			account.Name,
			account.Email,
			account.AvatarURL,
			account.RegisteredAt,
			account.DeletedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *AccountRepository) Find(ctx context.Context, accountID string) (*auth.Account, error) {
	q := sq.Select(accountColumns()...).
		From(tableAccounts).
		Where(sq.Eq{accountFieldID: accountID})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &auth.AccountNotFoundError{ID: accountID}
		}

		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	return account, nil
}

func (repo *AccountRepository) FindByProvider(
	ctx context.Context,
	provider auth.Provider,
	providerUserID string,
) (*auth.Account, error) {
	q := sq.Select(accountColumns()...).
		From(tableAccounts).
		Where(sq.Eq{
			accountFieldProvider:       provider,
			accountFieldProviderUserID: providerUserID,
		})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &auth.AccountNotFoundError{ID: providerUserID}
		}

		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	return account, nil
}

func (repo *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	q := sq.Update(tableAccounts).
		Set(accountFieldName, account.Name).
		Set(accountFieldEmail, account.Email).
		Set(accountFieldAvatarURL, account.AvatarURL).
		Set(accountFieldDeletedAt, account.DeletedAt).
		Where(sq.Eq{accountFieldID: account.ID})

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
		return &auth.AccountNotFoundError{ID: account.ID}
	}

	return nil
}
