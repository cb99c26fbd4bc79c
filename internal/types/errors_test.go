package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	assert.Equal(t, "[NOT_FOUND] Contact not found", ErrContactNotFound.Error())
	e := NewAppErrorWithDetails(ErrCodeCSVMalformed, "bad csv", "line 3")
	assert.Equal(t, "[CSV_MALFORMED] bad csv: line 3", e.Error())
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := NewAppErrorWithCause(ErrCodeDBUnavailable, "Database connection failed", cause)
	wrapped := fmt.Errorf("save: %w", e)

	assert.ErrorIs(t, wrapped, ErrDBUnavailable)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrContactNotFound)
	assert.Equal(t, ErrCodeDBUnavailable, GetErrorCode(wrapped))
	assert.Equal(t, "dial tcp: refused", e.Details)
}

func TestAsAppError(t *testing.T) {
	assert.Nil(t, AsAppError(nil))
	assert.Same(t, ErrFileMissing, AsAppError(ErrFileMissing))

	other := AsAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeUnknown, other.Code)
	assert.Equal(t, "boom", other.Details)
}

func TestAppError_HTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeInvalidParameter:  http.StatusBadRequest,
		ErrCodeFileMissing:       http.StatusBadRequest,
		ErrCodeNotFound:          http.StatusNotFound,
		ErrCodeUnsupportedFile:   http.StatusUnsupportedMediaType,
		ErrCodeFileTooLarge:      http.StatusRequestEntityTooLarge,
		ErrCodeDBUnavailable:     http.StatusServiceUnavailable,
		ErrCodeOCRFailed:         http.StatusInternalServerError,
		ErrCodeContactIncomplete: http.StatusBadRequest,
	}
	for code, status := range cases {
		assert.Equal(t, status, NewAppError(code, "x").HTTPStatus(), code)
	}
}
