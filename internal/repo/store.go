package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/models"
)

// Store — каталог дескрипторов файлов.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (models.Descriptor, error)
	Save(ctx context.Context, d models.Descriptor) error
	List(ctx context.Context) ([]models.Descriptor, error)
	Close() error
}

const (
	memoryScheme   = "memory://"
	sqliteScheme   = "sqlite://"
	postgresScheme = "postgres://"
	postgresAlias  = "postgresql://"
)

// Open выбирает реализацию каталога по схеме DSN.
// Для sqlite миграции применяются сразу, для postgres через cmd/migrate.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, fmt.Errorf("meta dsn is empty")
	case strings.HasPrefix(dsn, memoryScheme):
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, sqliteScheme):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, sqliteScheme), logger)
	case strings.HasPrefix(dsn, postgresScheme), strings.HasPrefix(dsn, postgresAlias):
		return NewPGStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported meta dsn scheme: %q", dsn)
	}
}
