package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveResponse("file", http.StatusOK)
	m.ObserveResponse("file", http.StatusOK)
	m.ObserveResponse("redirect", http.StatusMovedPermanently)
	m.FileIngested()

	done := m.StreamStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamsRunning))
	done(6)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.streamsRunning))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.responses.WithLabelValues("file", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("redirect", "301")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.bytesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingested))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.FileIngested()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ingested))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ingested))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveResponse("file", http.StatusNotModified)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `download_responses_total{route="file",status="304"} 1`)
}

func TestMetrics_ObserveCache(t *testing.T) {
	m := New()
	hits, misses := int64(0), int64(0)
	m.ObserveCache(func() (int64, int64) { return hits, misses })

	hits, misses = 3, 1
	body := scrape(t, m)
	assert.Contains(t, body, "download_descriptor_cache_hits_total 3")
	assert.Contains(t, body, "download_descriptor_cache_misses_total 1")

	hits = 5
	assert.Contains(t, scrape(t, m), "download_descriptor_cache_hits_total 5")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCache(func() (int64, int64) { return 1, 1 })
	m.ObserveResponse("file", http.StatusOK)
	m.FileIngested()
	m.StreamStarted()(10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
