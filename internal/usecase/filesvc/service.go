package filesvc

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/blob"
	"github.com/sir_venger/download_lite/internal/metrics"
	"github.com/sir_venger/download_lite/internal/models"
)

type (
	// MetaStorage хранилище мета данных файлов
	MetaStorage interface {
		Get(ctx context.Context, id uuid.UUID) (models.Descriptor, error)
		Save(ctx context.Context, d models.Descriptor) error
		List(ctx context.Context) ([]models.Descriptor, error)
	}

	// Service объединяет публикацию файлов и доступ к ним.
	Service interface {
		Lookup(ctx context.Context, id uuid.UUID) (models.Resource, error)
		Ingest(ctx context.Context, name string, r io.Reader) (models.Descriptor, error)
		List(ctx context.Context) ([]models.Descriptor, error)
		Stats(ctx context.Context) (Stats, error)
	}
)

type Deps struct {
	MetaStorage MetaStorage
	Blobs       blob.Store
	StagingDir  string
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type Files struct {
	Deps
}

// New конструирует сервис файлов с заданными зависимостями.
func New(deps Deps) *Files {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Logger = deps.Logger.With().Str("component", "filesvc").Logger()

	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)
