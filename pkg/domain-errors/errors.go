// Package domainerrors defines the coded errors services return to the
// transport layer. Codes map onto HTTP statuses in one place so handlers
// never hand-pick status codes.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeUpstream     Code = "upstream_error"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. Values are comparable so tests can use
// errors.Is against a freshly constructed Error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// reachable through errors.Unwrap for logging but never leaves the process
// through an HTTP response.
func Wrap(cause error, code Code, message string) Error {
	return Error{Code: code, Message: message, cause: cause}
}

func (e Error) Error() string {
	if e.cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e Error) Unwrap() error { return e.cause }

// Is matches on code and message, ignoring the cause, so that
// errors.Is(err, New(CodeUnauthorized, "invalid token")) holds for
// wrapped variants too.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de Error
	return errors.As(err, &de) && de.Code == code
}

// ToHTTPStatus translates a code into its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
