// Package blob хранит байты опубликованных файлов: на локальном диске или в S3.
package blob

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Store — хранилище содержимого файлов по идентификатору.
type Store interface {
	// Put записывает ровно size байт из r; size < 0: длина неизвестна.
	Put(ctx context.Context, id uuid.UUID, r io.Reader, size int64) error
	// Open открывает содержимое на чтение; отсутствующий blob: models.ErrNotFound.
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const (
	// PartialSuffix помечает файлы, запись которых ещё не завершена.
	PartialSuffix = ".partial"
	// StagingPattern — шаблон имён временных файлов приёма (os.CreateTemp).
	StagingPattern = "ingest-*.tmp"
)
