package models

import "time"

// Validators содержит условные заголовки одного входящего запроса.
// Нулевое значение поля означает, что заголовок не передан.
type Validators struct {
	Method          string
	IfNoneMatch     string
	IfModifiedSince time.Time
}

// HasIfNoneMatch сообщает, передан ли If-None-Match.
func (v Validators) HasIfNoneMatch() bool {
	return v.IfNoneMatch != ""
}

// HasIfModifiedSince сообщает, передан ли разобранный If-Modified-Since.
func (v Validators) HasIfModifiedSince() bool {
	return !v.IfModifiedSince.IsZero()
}
