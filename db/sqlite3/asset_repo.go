package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/harupress/harupress/assets"
)

const tableAssets = "assets"

type AssetRepository struct {
	db *sql.DB
}

var _ assets.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const (
	assetFieldID          = "id"
	assetFieldFileName    = "file_name"
	assetFieldObjectKey   = "object_key"
	assetFieldContentType = "content_type"
	assetFieldSize        = "size"
	assetFieldCreatedAt   = "created_at"
)

func assetColumns() []string {
	return []string{
		assetFieldID,
		assetFieldFileName,
		assetFieldObjectKey,
		assetFieldContentType,
		assetFieldSize,
		assetFieldCreatedAt,
	}
}

func scanAsset(row sq.RowScanner) (*assets.Asset, error) {
	var asset assets.Asset

	err := row.Scan(
		&asset.ID,
		&asset.FileName,
		&asset.Key,
		&asset.ContentType,
		&asset.Size,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &asset, nil
}

func (repo *AssetRepository) Insert(ctx context.Context, asset assets.Asset) error {
	q := sq.Insert(tableAssets).
		Columns(assetColumns()...).
		Values(
			asset.ID,
			asset.FileName,
			asset.Key,
			asset.ContentType,
			asset.Size,
			asset.CreatedAt,
		)

	q = q.RunWith(runner(ctx, repo.db))

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *AssetRepository) Find(ctx context.Context, id string) (*assets.Asset, error) {
	q := sq.Select(assetColumns()...).
		From(tableAssets).
		Where(sq.Eq{assetFieldID: id})

	q = q.RunWith(runner(ctx, repo.db))

	row := q.QueryRowContext(ctx)

	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &assets.AssetNotFoundError{ID: id}
		}

		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	return asset, nil
}

func (repo *AssetRepository) List(ctx context.Context) ([]*assets.Asset, error) {
	q := sq.Select(assetColumns()...).
		From(tableAssets).
		OrderBy(assetFieldCreatedAt + " DESC")

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

	list := make([]*assets.Asset, 0)

	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset failed: %w", err)
		}

		list = append(list, asset)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return list, nil
}

func (repo *AssetRepository) Delete(ctx context.Context, id string) error {
	q := sq.Delete(tableAssets).
		Where(sq.Eq{assetFieldID: id})

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
		return &assets.AssetNotFoundError{ID: id}
	}

	return nil
}
