package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	cfg "github.com/pustaka-id/book-ingest/config"
	"github.com/pustaka-id/book-ingest/pkg/logger"
)

var (
	clientOnce sync.Once
	client     *LocalStorage
	clientErr  error
)

// LocalStorage keeps uploads on the local disk under a single directory.
// The default backend: the pipeline runs on the same host, so no object
// store round-trip is needed.
type LocalStorage struct {
	dir    string
	logger logger.Logger
}

func GetClient(log logger.Logger) (*LocalStorage, error) {
	clientOnce.Do(func() {
		media := cfg.GetMediaConfig()
		client, clientErr = NewLocalStorage(filepath.Join(media.Root, "uploads"), log)
	})
	return client, clientErr
}

func NewLocalStorage(dir string, log logger.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir, logger: log}, nil
}

// Store implements Storage.Store. The returned id embeds a random prefix so
// repeated uploads of the same filename never collide.
func (l *LocalStorage) Store(ctx context.Context, reader io.Reader, filename string) (string, error) {
	id := fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.New().String(), "-", "")[:8], sanitize(filename))

	f, err := os.Create(filepath.Join(l.dir, id))
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return id, nil
}

// Get implements Storage.Get
func (l *LocalStorage) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.dir, sanitize(id)))
	if err != nil {
		l.logger.Error("Failed to get file from local storage",
			logger.String("id", id),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

// Delete implements Storage.Delete
func (l *LocalStorage) Delete(ctx context.Context, id string) error {
	if err := os.Remove(filepath.Join(l.dir, sanitize(id))); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// CleanupBefore implements Storage.CleanupBefore
func (l *LocalStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to list storage directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(filepath.Join(l.dir, entry.Name())); err != nil {
				l.logger.Error("Failed to delete expired file",
					logger.String("name", entry.Name()),
					logger.Error(err),
				)
				continue
			}
			l.logger.Info("Deleted expired file",
				logger.String("name", entry.Name()),
				logger.Time("lastModified", info.ModTime()),
			)
		}
	}

	return nil
}

// sanitize strips path separators so an id can never escape the storage
// directory.
func sanitize(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return "_"
	}
	return name
}
