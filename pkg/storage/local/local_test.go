package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)
	return s
}

func TestStoreAndGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id, err := s.Store(ctx, strings.NewReader("book bytes"), "buku.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "_buku.pdf"))

	r, err := s.Get(ctx, id)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "book bytes", string(data))
}

func TestStore_SameFilenameNoCollision(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.Store(ctx, strings.NewReader("one"), "buku.pdf")
	require.NoError(t, err)
	second, err := s.Store(ctx, strings.NewReader("two"), "buku.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	r, err := s.Get(ctx, first)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id, err := s.Store(ctx, strings.NewReader("gone soon"), "buku.pdf")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.Error(t, err)
}

func TestGet_PathEscapeBlocked(t *testing.T) {
	s := newTestStorage(t)

	outside := filepath.Join(filepath.Dir(s.dir), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

	_, err := s.Get(context.Background(), "../secret")
	assert.Error(t, err)
}

func TestCleanupBefore(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	oldID, err := s.Store(ctx, strings.NewReader("old"), "old.pdf")
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.dir, oldID), past, past))

	freshID, err := s.Store(ctx, strings.NewReader("fresh"), "fresh.pdf")
	require.NoError(t, err)

	require.NoError(t, s.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)))

	_, err = s.Get(ctx, oldID)
	assert.Error(t, err)

	r, err := s.Get(ctx, freshID)
	require.NoError(t, err)
	r.Close()
}
