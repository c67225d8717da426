package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeYAML(t, `
listen_addr: ":9000"
meta_dsn: "memory://"
log_level: debug
blob:
  backend: s3
  s3:
    bucket: files
    endpoint: http://minio:9000
    use_path_style: true
throttle:
  mode: shared
  bytes_per_second: 2048
  burst: 512
gc:
  ttl: 30m
`)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.ListenAddr)
	assert.Equal(t, "memory://", c.MetaDSN)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, BackendS3, c.Blob.Backend)
	assert.Equal(t, "files", c.Blob.S3.Bucket)
	assert.True(t, c.Blob.S3.UsePathStyle)
	assert.Equal(t, ThrottleConfig{Mode: ThrottleShared, BytesPerSecond: 2048, Burst: 512}, c.Throttle)
	assert.Equal(t, 30*time.Minute, c.GC.TTL)
	// не заданное в файле остаётся по умолчанию
	assert.Equal(t, 10*time.Minute, c.GC.Interval)
	assert.Equal(t, "console", c.LogFormat)
}

func TestLoadFile_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, "listen_addr: \":9000\"\nthrottle:\n  bytes_per_second: 10\n")
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("THROTTLE_BYTES_PER_SECOND", "0")
	t.Setenv("BLOB_DATA_DIR", "/srv/blobs")
	t.Setenv("CACHE_SIZE_MB", "0")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.ListenAddr)
	assert.Equal(t, int64(0), c.Throttle.BytesPerSecond)
	assert.Equal(t, "/srv/blobs", c.Blob.DataDir)
	assert.Equal(t, 0, c.Cache.SizeMB)
}

func TestLoadFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad backend":        "blob:\n  backend: ftp\n",
		"s3 without bucket":  "blob:\n  backend: s3\n",
		"bad throttle mode":  "throttle:\n  mode: fast\n",
		"negative rate":      "throttle:\n  bytes_per_second: -1\n",
		"bad log level":      "log_level: loud\n",
		"empty listen addr":  "listen_addr: \"\"\n",
		"fs without dir":     "blob:\n  data_dir: \"\"\n",
		"malformed yaml":     "listen_addr: [\n",
		"negative gc ttl":    "gc:\n  ttl: -1s\n",
		"negative pool size": "stream:\n  pool_size: -3\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeYAML(t, body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "warn"
	c.LogFormat = "json"

	var out bytes.Buffer
	logger, err := c.NewLogger(&out)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"k":"v"`)

	c.LogLevel = "nonsense"
	_, err = c.NewLogger(&out)
	assert.Error(t, err)
}
