package assets

import (
	"context"
	"fmt"
	"io"
	"time"
)

type Asset struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	Key         string    `json:"-"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`

	// URL is filled on the way out, it is never persisted.
	URL string `json:"url,omitempty"`
}

type AssetRepository interface {
	Insert(ctx context.Context, asset Asset) error
	Find(ctx context.Context, id string) (*Asset, error)
	List(ctx context.Context) ([]*Asset, error)
	Delete(ctx context.Context, id string) error
}

// Storage abstracts the object store holding asset payloads.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type AssetNotFoundError struct {
	ID string
}

func (err AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset with id '%s' not found", err.ID)
}

type AssetTooLargeError struct {
	Size    int64
	MaxSize int64
}

func (err AssetTooLargeError) Error() string {
	return fmt.Sprintf("asset size %d exceeds the maximum of %d bytes", err.Size, err.MaxSize)
}

type EmptyFileNameError struct{}

func (err EmptyFileNameError) Error() string {
	return "file name cannot be empty"
}
