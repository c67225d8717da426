// Package delivery решает, чем ответить на условный GET/HEAD, и выдаёт тело файла.
package delivery

import "github.com/sir_venger/download_lite/internal/models"

// Decision — вердикт проверки условных заголовков.
type Decision int

const (
	Proceed Decision = iota
	NotModified
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case NotModified:
		return "not_modified"
	default:
		return "unknown"
	}
}

// Evaluate сверяет валидаторы запроса с дескриптором.
//
// If-None-Match проверяется первым: совпадение сразу даёт NotModified,
// несовпадение не решает ничего и передаёт слово If-Modified-Since.
// If-Modified-Since даёт NotModified, если файл не новее присланного времени
// (равные секунды считаются попаданием в кеш).
func Evaluate(d models.Descriptor, v models.Validators) Decision {
	if v.HasIfNoneMatch() && d.MatchesETag(v.IfNoneMatch) {
		return NotModified
	}
	if v.HasIfModifiedSince() && d.NotModifiedSince(v.IfModifiedSince) {
		return NotModified
	}

	return Proceed
}
