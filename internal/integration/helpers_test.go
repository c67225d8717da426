package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/app/resthttp"
	"github.com/sir_venger/download_lite/internal/config"
	"github.com/sir_venger/download_lite/pkg/downloadclient"
	"github.com/stretchr/testify/require"
)

// testConfig — конфигурация с каталогом на sqlite и байтами на диске внутри root.
func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.MetaDSN = "sqlite://" + filepath.Join(root, "meta.db")
	cfg.Blob.DataDir = filepath.Join(root, "blobs")
	cfg.Blob.StagingDir = filepath.Join(root, "staging")
	cfg.Throttle.BytesPerSecond = 0
	return cfg
}

// startServer собирает приложение по cfg и поднимает его на httptest.
// Сервер и каталог закрываются через t.Cleanup.
func startServer(t *testing.T, cfg *config.Config) (*httptest.Server, *resthttp.App) {
	t.Helper()
	require.NoError(t, cfg.Validate())

	app, err := resthttp.Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return srv, app
}

func newClient() *downloadclient.Client {
	return downloadclient.New()
}
