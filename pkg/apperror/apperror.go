// Package apperror defines the error taxonomy surfaced at the request
// boundary. Business logic returns these instead of raising through the
// serving layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidState    = "INVALID_STATE"
	CodeConflict        = "CONFLICT"
)

// Error is a classified application error carrying its HTTP status.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newf(code string, status int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...interface{}) *Error {
	return newf(CodeUnauthenticated, http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newf(CodeForbidden, http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(CodeNotFound, http.StatusNotFound, format, args...)
}

func InvalidInput(format string, args ...interface{}) *Error {
	return newf(CodeInvalidInput, http.StatusBadRequest, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newf(CodeInvalidState, http.StatusConflict, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(CodeConflict, http.StatusConflict, format, args...)
}

// StatusOf maps an error to its HTTP status, defaulting to 500 for
// unclassified errors.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the taxonomy code of a classified error, or "" otherwise.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
