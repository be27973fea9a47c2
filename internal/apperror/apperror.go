// Package apperror define typed failure returned by service layer
package apperror

import (
	"errors"
	"net/http"
)

// Code classify failure so transport layer can map it without string matching
type Code string

const (
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeMissingResume     Code = "MISSING_RESUME"
	CodeScorer            Code = "SCORER_ERROR"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInternal          Code = "INTERNAL"
)

// Error carries a Code, a message safe to return to client and the underlying cause
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError create Error with given code
func NewError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Is report whether err or any error it wraps is an *Error with given code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf return code of the first *Error found in err chain, CodeInternal otherwise
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Message return client facing message of err
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus map err to HTTP status code
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition:
		return http.StatusConflict
	case CodeMissingResume, CodeValidation:
		return http.StatusBadRequest
	case CodeScorer:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(msg string) *Error { return NewError(CodeUnauthorized, msg, nil) }

func Forbidden(msg string) *Error { return NewError(CodeForbidden, msg, nil) }

func NotFound(msg string) *Error { return NewError(CodeNotFound, msg, nil) }

func Conflict(msg string) *Error { return NewError(CodeConflict, msg, nil) }

func Validation(msg string) *Error { return NewError(CodeValidation, msg, nil) }

// Internal wrap unexpected failure, usually from storage
func Internal(msg string, err error) *Error { return NewError(CodeInternal, msg, err) }
