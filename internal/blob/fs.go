package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/models"
)

// FSStore раскладывает blob'ы плоско по каталогу: {dir}/{id}.
// Запись идёт в {id}.partial и переименовывается только после успешного fsync.
type FSStore struct {
	dir string
}

var _ Store = (*FSStore)(nil)

// NewFSStore создаёт каталог данных, если его ещё нет.
func NewFSStore(dir string) (*FSStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("blob data dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob data dir: %w", err)
	}

	return &FSStore{dir: dir}, nil
}

// Dir возвращает корневой каталог хранилища.
func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String())
}

func (s *FSStore) Put(ctx context.Context, id uuid.UUID, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	final := s.path(id)
	partial := final + PartialSuffix

	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create partial blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("%w: size mismatch: want %d, got %d", models.ErrInvalidUpload, size, n)
	}
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partial)
		return err
	}

	if err = os.Rename(partial, final); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("publish blob: %w", err)
	}

	return nil
}

func (s *FSStore) Open(_ context.Context, id uuid.UUID) (io.ReadCloser, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}

	return f, nil
}

func (s *FSStore) Delete(_ context.Context, id uuid.UUID) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
