package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sir_venger/download_lite/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestWrite(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		wantBody string
	}{
		{
			name:     "not found has empty body",
			err:      fmt.Errorf("lookup: %w", models.ErrNotFound),
			status:   http.StatusNotFound,
			wantBody: "",
		},
		{
			name:     "invalid upload keeps message",
			err:      fmt.Errorf("%w: size mismatch", models.ErrInvalidUpload),
			status:   http.StatusBadRequest,
			wantBody: "invalid upload: size mismatch",
		},
		{
			name:     "conflict",
			err:      models.ErrAlreadyExists,
			status:   http.StatusConflict,
			wantBody: models.ErrAlreadyExists.Error(),
		},
		{
			name:     "stream open failure is never a 404",
			err:      fmt.Errorf("%w: %w", models.ErrStreamOpen, models.ErrNotFound),
			status:   http.StatusInternalServerError,
			wantBody: http.StatusText(http.StatusInternalServerError),
		},
		{
			name:     "internal hides details",
			err:      errors.New("open /srv/data/secret: permission denied"),
			status:   http.StatusInternalServerError,
			wantBody: http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}
