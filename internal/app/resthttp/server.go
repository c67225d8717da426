package resthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/sir_venger/download_lite/internal/blob"
	"github.com/sir_venger/download_lite/internal/metrics"
	"github.com/sir_venger/download_lite/internal/usecase/delivery"
	"github.com/sir_venger/download_lite/internal/usecase/filesvc"
	"github.com/sir_venger/download_lite/pkg/downloadproto"
)

// Метки маршрутов в метриках.
const (
	routeRedirect = "redirect"
	routeFile     = "file"
)

type Deps struct {
	FilesService filesvc.Service
	Delivery     *delivery.Service
	GC           *blob.GC
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
}

type Server struct {
	Deps
}

// NewServer конструктор
func NewServer(deps Deps) http.Handler {
	srv := &Server{Deps: deps}

	rtr := chi.NewRouter()
	rtr.Use(
		hlog.NewHandler(deps.Logger),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(accessLog),
		middleware.Recoverer,
	)

	rtr.Get(downloadproto.RouteDownloadByID, srv.download(delivery.ActionRedirect, routeRedirect))
	rtr.Head(downloadproto.RouteDownloadByID, srv.download(delivery.ActionRedirect, routeRedirect))
	rtr.Get(downloadproto.RouteDownloadNamed, srv.download(delivery.ActionServe, routeFile))
	rtr.Head(downloadproto.RouteDownloadNamed, srv.download(delivery.ActionServe, routeFile))

	rtr.Post(downloadproto.RouteFiles, srv.postFiles)
	rtr.Get(downloadproto.RouteFiles, srv.listFiles)
	rtr.Get(downloadproto.RouteHealth, srv.health)
	rtr.Post(downloadproto.RouteGC, srv.gcOnce)
	rtr.Method(http.MethodGet, downloadproto.RouteMetrics, deps.Metrics.Handler())

	return rtr
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
