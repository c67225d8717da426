package delivery

import (
	"net/http"
	"strconv"

	"github.com/sir_venger/download_lite/internal/models"
)

// BodyPolicy говорит, что делать с телом ответа.
type BodyPolicy int

const (
	// BodyNone — тела нет (304, HEAD).
	BodyNone BodyPolicy = iota
	// BodyStream — тело читается из хранилища через ограничитель скорости.
	BodyStream
)

// Rendered — статус и заголовки ответа без самого тела.
type Rendered struct {
	Status int
	Header http.Header
	Body   BodyPolicy
}

// Header names.
const (
	HeaderETag          = "ETag"
	HeaderLastModified  = "Last-Modified"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderLocation      = "Location"
)

// Render строит ответ только из дескриптора, не трогая содержимое файла.
// HEAD получает те же заголовки, что и GET.
func Render(d models.Descriptor, decision Decision, method string) Rendered {
	h := make(http.Header, 4)
	h.Set(HeaderETag, d.ETag())
	h.Set(HeaderLastModified, d.LastModified.UTC().Format(http.TimeFormat))

	if decision == NotModified {
		return Rendered{Status: http.StatusNotModified, Header: h, Body: BodyNone}
	}

	h.Set(HeaderContentLength, strconv.FormatInt(d.Size, 10))
	if d.HasMediaType() {
		h.Set(HeaderContentType, d.MediaType)
	}

	body := BodyStream
	if method == http.MethodHead {
		body = BodyNone
	}

	return Rendered{Status: http.StatusOK, Header: h, Body: body}
}
