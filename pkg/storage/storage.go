package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pustaka-id/book-ingest/pkg/logger"
	"github.com/pustaka-id/book-ingest/pkg/storage/local"
	"github.com/pustaka-id/book-ingest/pkg/storage/minio"
	"github.com/pustaka-id/book-ingest/pkg/storage/s3"
)

// Type selects a storage backend for uploaded PDFs and ingest results.
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
	TypeMinio Type = "minio"
)

// Storage keeps the original uploads and the ingest result documents.
// Page images and covers do NOT go through here; the pipeline writes those
// straight to the media root where the presentation layer reads them.
type Storage interface {
	// Store saves the content and returns its id
	Store(ctx context.Context, reader io.Reader, filename string) (string, error)
	// Get retrieves stored content by id
	Get(ctx context.Context, id string) (io.ReadCloser, error)
	// Delete removes stored content
	Delete(ctx context.Context, id string) error
	// CleanupBefore removes content last modified before threshold
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage is the backend factory.
func NewStorage(storageType Type, log logger.Logger) (Storage, error) {
	switch storageType {
	case TypeLocal:
		return local.GetClient(log)
	case TypeS3:
		return s3.GetClient(log)
	case TypeMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
