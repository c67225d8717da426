// Package metrics собирает Prometheus-метрики сервера выдачи.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит собственный реестр, чтобы несколько серверов в одном
// процессе (тесты) не конфликтовали в prometheus.DefaultRegisterer.
// Все методы безопасны для nil-получателя.
type Metrics struct {
	registry *prometheus.Registry

	responses      *prometheus.CounterVec
	bytesSent      prometheus.Counter
	streamsRunning prometheus.Gauge
	streamDuration prometheus.Histogram
	ingested       prometheus.Counter
}

// New регистрирует метрики в новом реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "download_responses_total",
				Help: "Download responses by route and status code.",
			},
			[]string{"route", "status"},
		),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "download_bytes_sent_total",
			Help: "Body bytes written to download clients.",
		}),
		streamsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "download_streams_in_progress",
			Help: "Body streams currently being written.",
		}),
		streamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "download_stream_duration_seconds",
			Help:    "Time spent streaming a body, throttling included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "download_ingested_files_total",
			Help: "Files published through the ingest endpoint.",
		}),
	}

	m.registry.MustRegister(
		m.responses,
		m.bytesSent,
		m.streamsRunning,
		m.streamDuration,
		m.ingested,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler отдаёт реестр в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveResponse(route string, status int) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// StreamStarted отмечает начало выдачи тела; возвращённая функция
// закрывает замер и учитывает отправленные байты.
func (m *Metrics) StreamStarted() func(sent int64) {
	if m == nil {
		return func(int64) {}
	}

	start := time.Now()
	m.streamsRunning.Inc()
	return func(sent int64) {
		m.streamsRunning.Dec()
		m.streamDuration.Observe(time.Since(start).Seconds())
		if sent > 0 {
			m.bytesSent.Add(float64(sent))
		}
	}
}

// CacheStats отдаёт накопленные попадания и промахи кеша дескрипторов.
type CacheStats func() (hits, misses int64)

// ObserveCache регистрирует счётчики кеша дескрипторов, снимаемые при каждом сборе.
func (m *Metrics) ObserveCache(stats CacheStats) {
	if m == nil || stats == nil {
		return
	}

	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "download_descriptor_cache_hits_total",
			Help: "Descriptor lookups served from the cache.",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "download_descriptor_cache_misses_total",
			Help: "Descriptor lookups that went to the catalog.",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

func (m *Metrics) FileIngested() {
	if m == nil {
		return
	}
	m.ingested.Inc()
}
