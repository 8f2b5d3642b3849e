package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("doctor", nil), http.StatusNotFound},
		{"validation", Validation("invalid payload", nil), http.StatusBadRequest},
		{"unauthenticated", Unauthorized(nil), http.StatusUnauthorized},
		{"forbidden", Forbidden("no access", nil), http.StatusForbidden},
		{"upstream", Upstream("email", stderrors.New("smtp down")), http.StatusBadGateway},
		{"conflict", Conflict("email already registered", nil), http.StatusConflict},
		{"internal", Internal(stderrors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("update doctor: %w", NotFound("doctor", nil))

	assert.Equal(t, ErrNotFound, CodeOf(err))
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrForbidden))
	assert.Equal(t, ErrInternal, CodeOf(stderrors.New("plain")))
	assert.False(t, Is(nil, ErrInternal))
}

func TestErrorMessage(t *testing.T) {
	err := Upstream("storage", stderrors.New("timeout"))
	assert.Equal(t, "storage request failed: timeout", err.Error())
	assert.Equal(t, "doctor not found", NotFound("doctor", nil).Error())
}
