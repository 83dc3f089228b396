package assets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxSize = 10 << 20 // 10 MiB
	urlExpiry      = time.Hour
)

type Service struct {
	assetRepo AssetRepository
	storage   Storage
	maxSize   int64
}

func NewService(assetRepo AssetRepository, storage Storage, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &Service{
		assetRepo: assetRepo,
		storage:   storage,
		maxSize:   maxSize,
	}
}

// Upload stores the payload under a date-partitioned key and records it.
// The object key keeps only the original extension, so hostile file names
// never reach the object store.
func (svc *Service) Upload(ctx context.Context, fileName, contentType string, size int64, r io.Reader) (*Asset, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, &EmptyFileNameError{}
	}

	if size > svc.maxSize {
		return nil, &AssetTooLargeError{Size: size, MaxSize: svc.maxSize}
	}

	now := time.Now()
	ext := strings.ToLower(filepath.Ext(fileName))
	key := fmt.Sprintf("%s/%s%s", now.Format("2006/01"), uuid.NewString(), ext)

	err := svc.storage.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store asset payload: %w", err)
	}

	asset := Asset{
		ID:          uuid.NewString(),
		FileName:    fileName,
		Key:         key,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   now,
	}

	err = svc.assetRepo.Insert(ctx, asset)
	if err != nil {
		// keep the store tidy if the record never made it
		_ = svc.storage.Remove(ctx, key)

		return nil, fmt.Errorf("failed to insert asset: %w", err)
	}

	asset.URL, err = svc.storage.PresignedURL(ctx, key, urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign asset url: %w", err)
	}

	return &asset, nil
}

func (svc *Service) ListAssets(ctx context.Context) ([]*Asset, error) {
	list, err := svc.assetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	for _, asset := range list {
		asset.URL, err = svc.storage.PresignedURL(ctx, asset.Key, urlExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign asset url: %w", err)
		}
	}

	return list, nil
}

func (svc *Service) DeleteAsset(ctx context.Context, id string) error {
	asset, err := svc.assetRepo.Find(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find asset: %w", err)
	}

	err = svc.storage.Remove(ctx, asset.Key)
	if err != nil {
		return fmt.Errorf("failed to remove asset payload: %w", err)
	}

	err = svc.assetRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	return nil
}
