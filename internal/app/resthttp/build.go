package resthttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/blob"
	"github.com/sir_venger/download_lite/internal/config"
	"github.com/sir_venger/download_lite/internal/metrics"
	meta "github.com/sir_venger/download_lite/internal/repo"
	"github.com/sir_venger/download_lite/internal/throttle"
	"github.com/sir_venger/download_lite/internal/usecase/delivery"
	"github.com/sir_venger/download_lite/internal/usecase/filesvc"
)

// App — собранный сервер со всеми зависимостями.
type App struct {
	Handler http.Handler
	GC      *blob.GC
	Metrics *metrics.Metrics

	catalog meta.Store
}

// Close освобождает каталог.
func (a *App) Close() error {
	return a.catalog.Close()
}

// Build собирает каталог, хранилище байтов, сервисы и роутер по конфигурации.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := meta.Open(ctx, cfg.MetaDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open meta store: %w", err)
	}

	m := metrics.New()
	catalog := store
	if cfg.Cache.SizeMB > 0 {
		cached := meta.NewCachedStore(store, cfg.Cache.SizeMB, cfg.Cache.TTL)
		m.ObserveCache(cached.Stats)
		catalog = cached
	}

	blobs, gcDirs, err := buildBlobStore(ctx, cfg.Blob)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	files := filesvc.New(filesvc.Deps{
		MetaStorage: catalog,
		Blobs:       blobs,
		StagingDir:  cfg.Blob.StagingDir,
		Logger:      logger,
		Metrics:     m,
	})
	deliverer := delivery.New(delivery.Deps{
		Storage:    files,
		Policy:     buildPolicy(cfg.Throttle),
		BufferSize: cfg.Stream.BufferSize,
		PoolSize:   cfg.Stream.PoolSize,
		Logger:     logger,
		Metrics:    m,
	})
	gc := blob.NewGC(cfg.GC.TTL, logger, gcDirs...)

	return &App{
		Handler: NewServer(Deps{
			FilesService: files,
			Delivery:     deliverer,
			GC:           gc,
			Metrics:      m,
			Logger:       logger,
		}),
		GC:      gc,
		Metrics: m,
		catalog: catalog,
	}, nil
}

// buildBlobStore возвращает хранилище и каталоги, которые должен подметать GC.
func buildBlobStore(ctx context.Context, cfg config.BlobConfig) (blob.Store, []string, error) {
	switch cfg.Backend {
	case config.BackendS3:
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 blob store: %w", err)
		}
		return s3Store, []string{cfg.StagingDir}, nil
	default:
		fsStore, err := blob.NewFSStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fsStore, []string{cfg.DataDir, cfg.StagingDir}, nil
	}
}

func buildPolicy(cfg config.ThrottleConfig) throttle.Policy {
	if cfg.Mode == config.ThrottleShared {
		return throttle.Shared(throttle.NewBudget(cfg.BytesPerSecond, cfg.Burst))
	}
	return throttle.PerResponse(cfg.BytesPerSecond, cfg.Burst)
}
