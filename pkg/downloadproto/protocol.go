// Package downloadproto описывает HTTP-протокол сервиса выдачи файлов.
package downloadproto

import (
	"net/url"
	"strings"
)

// Маршруты и заголовки REST-протокола.
const (
	DownloadPrefix     = "/download/"
	RouteDownloadByID  = "/download/{id}"
	RouteDownloadNamed = "/download/{id}/{name}"
	RouteFiles         = "/files"
	RouteHealth        = "/health"
	RouteGC            = "/admin/gc"
	RouteMetrics       = "/metrics"

	HeaderFileName    = "X-File-Name"
	HeaderFileNameAlt = "X-Filename"
	QueryFileName     = "filename"
)

// CanonicalPath возвращает путь, под которым файл отдаётся с именем.
// Имя экранируется как один сегмент пути.
func CanonicalPath(id, name string) string {
	return DownloadPrefix + id + "/" + url.PathEscape(name)
}

// ShortPath возвращает путь без имени; он перенаправляет на CanonicalPath.
func ShortPath(id string) string {
	return DownloadPrefix + id
}

// JoinURL склеивает базовый адрес сервера и путь протокола.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// UploadResponse — тело ответа POST /files.
type UploadResponse struct {
	FileID    string `json:"file_id"`
	Size      int64  `json:"size"`
	ETag      string `json:"etag"`
	MediaType string `json:"media_type,omitempty"`
}

// FileInfo — элемент ответа GET /files.
type FileInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ETag         string `json:"etag"`
	LastModified string `json:"last_modified"`
	MediaType    string `json:"media_type,omitempty"`
	URL          string `json:"url"`
}

// Health — тело ответа GET /health.
type Health struct {
	OK         bool  `json:"ok"`
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}
