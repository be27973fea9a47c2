package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_WrappedError(t *testing.T) {
	base := NewError(CodeConflict, "already applied", nil)
	wrapped := fmt.Errorf("submit: %w", base)

	assert.True(t, Is(wrapped, CodeConflict))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, "already applied", Message(wrapped))
}

func TestCodeOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, "boom", Message(err))
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(CodeScorer, "resume analysis failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "resume analysis failed: connection refused", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeInvalidTransition: http.StatusConflict,
		CodeMissingResume:     http.StatusBadRequest,
		CodeValidation:        http.StatusBadRequest,
		CodeScorer:            http.StatusBadGateway,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(NewError(code, "x", nil)), string(code))
	}
}
