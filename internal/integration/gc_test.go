package integration

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sir_venger/download_lite/pkg/downloadproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func Test_GC_RemovesAbandonedFiles(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.GC.TTL = time.Hour
	srv, _ := startServer(t, cfg)

	// опубликованный файл GC не трогает
	up, err := newClient().Upload(context.Background(), srv.URL, "live.txt", strings.NewReader("alive"), 5)
	require.NoError(t, err)

	stalePartial := filepath.Join(cfg.Blob.DataDir, "0b7b7c2e-0000-4000-8000-000000000001.partial")
	staleSpool := filepath.Join(cfg.Blob.StagingDir, "ingest-123.tmp")
	freshSpool := filepath.Join(cfg.Blob.StagingDir, "ingest-456.tmp")
	writeAged(t, stalePartial, 48*time.Hour)
	writeAged(t, staleSpool, 2*time.Hour)
	writeAged(t, freshSpool, time.Minute)

	resp, err := http.Post(srv.URL+downloadproto.RouteGC, "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.NoFileExists(t, stalePartial)
	assert.NoFileExists(t, staleSpool)
	assert.FileExists(t, freshSpool)

	resp, err = http.Get(srv.URL + downloadproto.CanonicalPath(up.FileID, "live.txt"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func Test_GC_BackgroundTicker(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.GC.TTL = time.Hour
	_, app := startServer(t, cfg)

	stale := filepath.Join(cfg.Blob.StagingDir, "ingest-789.tmp")
	writeAged(t, stale, 3*time.Hour)

	stop := app.GC.Start(20 * time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(stale)
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond)
}
