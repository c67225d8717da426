package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, s.Put(ctx, id, strings.NewReader("foobar"), 6))

	rc, err := s.Open(ctx, id)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(got))

	_, err = os.Stat(filepath.Join(s.Dir(), id.String()+PartialSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestFSStore_UnknownLength(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	payload := bytes.Repeat([]byte{0xAB}, 4096)
	require.NoError(t, s.Put(ctx, id, bytes.NewReader(payload), -1))

	rc, err := s.Open(ctx, id)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFSStore_SizeMismatchLeavesNothing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	err = s.Put(ctx, id, strings.NewReader("short"), 100)
	require.ErrorIs(t, err, models.ErrInvalidUpload)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = s.Open(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFSStore_CancelledContext(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Put(ctx, uuid.New(), strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFSStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, s.Put(ctx, id, strings.NewReader("x"), 1))
	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Open(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNewFSStore_EmptyDir(t *testing.T) {
	_, err := NewFSStore("  ")
	assert.Error(t, err)
}
