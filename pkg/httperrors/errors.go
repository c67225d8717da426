// Package httperrors переводит доменные ошибки в HTTP-ответы.
package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/download_lite/internal/models"
)

// Status возвращает HTTP-код для ошибки.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrStreamOpen):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Write пишет ответ для ошибки. 404 уходит с пустым телом, 500 с общим текстом.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	switch status {
	case http.StatusNotFound:
		w.WriteHeader(status)
	case http.StatusInternalServerError:
		http.Error(w, http.StatusText(status), status)
	default:
		http.Error(w, err.Error(), status)
	}
}
