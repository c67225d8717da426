package resthttp

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/sir_venger/download_lite/internal/models"
	"github.com/sir_venger/download_lite/internal/usecase/delivery"
	"github.com/sir_venger/download_lite/pkg/httperrors"
)

// download обслуживает обе формы URL; различаются они только действием.
// Сегмент {name} в поиске не участвует.
func (s *Server) download(action delivery.Action, route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := delivery.Request{
			Action:     action,
			ID:         chi.URLParam(r, "id"),
			Validators: parseValidators(r),
		}

		resp, err := s.Delivery.Deliver(r.Context(), req)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("file_id", req.ID).Msg("delivery failed")
			s.Metrics.ObserveResponse(route, httperrors.Status(err))
			httperrors.Write(w, err)
			return
		}

		s.Metrics.ObserveResponse(route, resp.Status)
		s.writeResponse(w, r, resp)
	}
}

// parseValidators достаёт условные заголовки. Нераспознанная дата считается отсутствующей.
func parseValidators(r *http.Request) models.Validators {
	v := models.Validators{
		Method:      r.Method,
		IfNoneMatch: strings.TrimSpace(r.Header.Get("If-None-Match")),
	}
	if raw := r.Header.Get("If-Modified-Since"); raw != "" {
		if t, err := http.ParseTime(raw); err == nil {
			v.IfModifiedSince = t
		}
	}

	return v
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp *delivery.Response) {
	h := w.Header()
	for k, v := range resp.Header {
		h[k] = v
	}
	// без Content-Type net/http подставил бы тип по первым байтам тела
	if _, ok := resp.Header[delivery.HeaderContentType]; !ok {
		h[delivery.HeaderContentType] = nil
	}
	w.WriteHeader(resp.Status)

	if resp.Body == nil {
		return
	}

	n, err := s.Delivery.Stream(w, resp.Body)
	if err != nil {
		// заголовки уже ушли клиенту, остаётся оборвать соединение
		hlog.FromRequest(r).Warn().Err(err).Int64("sent", n).Msg("stream aborted")
		panic(http.ErrAbortHandler)
	}
}
