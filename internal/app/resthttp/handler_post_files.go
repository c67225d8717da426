package resthttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
	"github.com/sir_venger/download_lite/pkg/downloadproto"
	"github.com/sir_venger/download_lite/pkg/httperrors"
)

// postFiles принимает поток данных и полностью делегирует публикацию сервису файлов.
func (s *Server) postFiles(w http.ResponseWriter, r *http.Request) {
	filename := extractFileName(r)

	d, err := s.FilesService.Ingest(r.Context(), filename, r.Body)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("name", filename).Msg("ingest failed")
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", downloadproto.CanonicalPath(d.ID.String(), d.OriginalName))
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(downloadproto.UploadResponse{
		FileID:    d.ID.String(),
		Size:      d.Size,
		ETag:      d.ETag(),
		MediaType: d.MediaType,
	})
}

// extractFileName пытается вытащить имя файла из заголовков или query-параметра.
func extractFileName(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(downloadproto.HeaderFileName)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get(downloadproto.HeaderFileNameAlt)); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get(downloadproto.QueryFileName)); v != "" {
		return v
	}
	return ""
}
