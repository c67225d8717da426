package models

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Descriptor — неизменяемый снимок метаданных одного сохранённого файла.
// Хеш и размер считаются один раз при загрузке; изменённый файл получает новый
// дескриптор с новым ID, существующий никогда не мутирует.
type Descriptor struct {
	ID           uuid.UUID `json:"id"`
	Size         int64     `json:"size"`
	OriginalName string    `json:"original_name"`
	ContentHash  string    `json:"content_hash"`
	LastModified time.Time `json:"last_modified"`
	MediaType    string    `json:"media_type,omitempty"`
}

// NewDescriptor собирает дескриптор, приводя время к UTC с точностью до секунды.
func NewDescriptor(id uuid.UUID, name string, size int64, contentHash string, lastModified time.Time, mediaType string) Descriptor {
	return Descriptor{
		ID:           id,
		Size:         size,
		OriginalName: name,
		ContentHash:  contentHash,
		LastModified: lastModified.UTC().Truncate(time.Second),
		MediaType:    mediaType,
	}
}

// ETag возвращает сильный валидатор в канонической форме (в кавычках).
func (d Descriptor) ETag() string {
	return `"` + d.ContentHash + `"`
}

// MatchesETag побайтно сравнивает значение If-None-Match с ETag.
func (d Descriptor) MatchesETag(requestETag string) bool {
	return requestETag == d.ETag()
}

// NotModifiedSince сообщает, что LastModified не позже клиентского времени.
// Равенство считается попаданием в кеш: сервер не может быть «новее» при равных секундах.
func (d Descriptor) NotModifiedSince(clientTime time.Time) bool {
	return !d.LastModified.Truncate(time.Second).After(clientTime.Truncate(time.Second))
}

// HasMediaType сообщает, удалось ли определить тип содержимого.
func (d Descriptor) HasMediaType() bool {
	return d.MediaType != ""
}

// Opener открывает новый независимый поток с телом файла.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Resource — то, что хранилище отдаёт по ID: дескриптор и способ открыть тело.
type Resource struct {
	Descriptor Descriptor
	Open       Opener
}
