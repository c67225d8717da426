package resthttp

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/samber/lo"
	"github.com/sir_venger/download_lite/internal/models"
	"github.com/sir_venger/download_lite/pkg/downloadproto"
	"github.com/sir_venger/download_lite/pkg/httperrors"
)

// listFiles отдаёт каталог от новых файлов к старым.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	all, err := s.FilesService.List(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list files failed")
		httperrors.Write(w, err)
		return
	}

	out := lo.Map(all, func(d models.Descriptor, _ int) downloadproto.FileInfo {
		return downloadproto.FileInfo{
			ID:           d.ID.String(),
			Name:         d.OriginalName,
			Size:         d.Size,
			ETag:         d.ETag(),
			LastModified: d.LastModified.UTC().Format(http.TimeFormat),
			MediaType:    d.MediaType,
			URL:          downloadproto.CanonicalPath(d.ID.String(), d.OriginalName),
		}
	})

	writeJSON(w, http.StatusOK, out)
}

// health возвращает агрегированную статистику по каталогу.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	st, err := s.FilesService.Stats(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadproto.Health{
		OK:         true,
		Files:      st.Files,
		TotalBytes: st.TotalBytes,
	})
}

// gcOnce вручную запускает сбор брошенных временных файлов.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	if s.GC != nil {
		if removed, err := s.GC.Sweep(); err == nil {
			hlog.FromRequest(r).Debug().Int("removed", removed).Msg("manual gc")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
