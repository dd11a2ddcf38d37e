package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"tikaparse/internal/domain"
	"tikaparse/internal/handler"
	"tikaparse/internal/tika"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("wrapped: %w", domain.ErrFileTooLarge), http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
		{tika.ErrEmptySource, http.StatusBadRequest, "EMPTY_FILE"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{fmt.Errorf("%w: %q", tika.ErrInvalidServiceMode, "x"), http.StatusBadRequest, "INVALID_SERVICE_MODE"},
		{fmt.Errorf("decode: %w", tika.ErrMalformedResponse), http.StatusBadGateway, "MALFORMED_TIKA_RESPONSE"},
		{&tika.TransportError{Op: "call", Err: errors.New("eof")}, http.StatusBadGateway, "TIKA_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}
