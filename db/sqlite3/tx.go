package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

type ctxKeyTx struct{}

// Transactor runs a function inside a database transaction. The open
// transaction travels in the context, so every repository call made by the
// function joins it automatically. Nested calls join the outer transaction.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(context.WithValue(ctx, ctxKeyTx{}, tx))
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			slog.ErrorContext(ctx, "failed to rollback transaction", "error", rbErr)
		}

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(ctxKeyTx{}).(*sql.Tx)

	return tx
}

// runner picks the context transaction when one is open, otherwise the
// plain connection pool.
func runner(ctx context.Context, db *sql.DB) sq.BaseRunner {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}

	return db
}
