package integration

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sir_venger/download_lite/internal/config"
	"github.com/sir_venger/download_lite/pkg/downloadclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// 4 KiB при 2 KiB/s занимают ~2s независимо от burst.
func Test_Throttle_PerResponse(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	for name, burst := range map[string]int{"explicit burst": 1024, "default burst": 0} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t.TempDir())
			cfg.Throttle = config.ThrottleConfig{Mode: config.ThrottlePerResponse, BytesPerSecond: 2048, Burst: burst}
			srv, _ := startServer(t, cfg)
			cl := newClient()
			ctx := context.Background()

			payload := bytes.Repeat([]byte("x"), 4096)
			up, err := cl.Upload(ctx, srv.URL, "slow.bin", bytes.NewReader(payload), int64(len(payload)))
			require.NoError(t, err)

			var got bytes.Buffer
			start := time.Now()
			_, err = cl.Download(ctx, srv.URL, up.FileID, downloadclient.Validators{}, &got)
			elapsed := time.Since(start)

			require.NoError(t, err)
			assert.Equal(t, payload, got.Bytes())
			assert.GreaterOrEqual(t, elapsed, 1900*time.Millisecond)
			assert.Less(t, elapsed, 10*time.Second)
		})
	}
}

// Два параллельных ответа делят один бюджет: вместе 4 KiB, ~2s как один медленный ответ.
func Test_Throttle_SharedBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	cfg := testConfig(t.TempDir())
	cfg.Throttle = config.ThrottleConfig{Mode: config.ThrottleShared, BytesPerSecond: 2048, Burst: 1024}
	srv, _ := startServer(t, cfg)
	cl := newClient()
	ctx := context.Background()

	payload := bytes.Repeat([]byte("y"), 2048)
	up, err := cl.Upload(ctx, srv.URL, "shared.bin", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := cl.Download(ctx, srv.URL, up.FileID, downloadclient.Validators{}, io.Discard)
			return err
		})
	}
	require.NoError(t, g.Wait())

	// по отдельности каждый уложился бы в ~1s
	assert.GreaterOrEqual(t, time.Since(start), 1900*time.Millisecond)
}

func Test_Throttle_DisabledIsFast(t *testing.T) {
	srv, _ := startServer(t, testConfig(t.TempDir()))
	cl := newClient()
	ctx := context.Background()

	payload := bytes.Repeat([]byte("z"), 1<<20)
	up, err := cl.Upload(ctx, srv.URL, "fast.bin", bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)

	start := time.Now()
	res, err := cl.Download(ctx, srv.URL, up.FileID, downloadclient.Validators{}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), res.Size)
	assert.Less(t, time.Since(start), 5*time.Second)
}
