package filesvc

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sir_venger/download_lite/internal/models"
)

// Stats — сводка по каталогу для /health.
type Stats struct {
	Files      int
	TotalBytes int64
}

// Lookup находит дескриптор и возвращает его вместе со способом открыть тело.
// Для неизвестного id возвращает models.ErrNotFound.
func (s *Files) Lookup(ctx context.Context, id uuid.UUID) (models.Resource, error) {
	d, err := s.MetaStorage.Get(ctx, id)
	if err != nil {
		return models.Resource{}, err
	}

	return models.Resource{
		Descriptor: d,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return s.Blobs.Open(ctx, d.ID)
		},
	}, nil
}

func (s *Files) List(ctx context.Context) ([]models.Descriptor, error) {
	return s.MetaStorage.List(ctx)
}

func (s *Files) Stats(ctx context.Context) (Stats, error) {
	all, err := s.MetaStorage.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Files:      len(all),
		TotalBytes: lo.SumBy(all, func(d models.Descriptor) int64 { return d.Size }),
	}, nil
}
