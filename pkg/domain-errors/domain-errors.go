package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// The string values are part of the public JSON contract of the login flow.
type Code string

const (
	CodeMissingAuth     Code = "MISSING_AUTH"
	CodeInvalidAuth     Code = "INVALID_AUTH"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeAccessDenied    Code = "ACCESS_DENIED"
	CodeAuthFailed      Code = "AUTH_FAILED"
	CodeAPITimeout      Code = "API_TIMEOUT"
	CodeAPIError        Code = "API_ERROR"
	CodeConnectionError Code = "CONNECTION_ERROR"
	CodeServerError     Code = "SERVER_ERROR"

	// Session endpoint codes.
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and client layers.
type Error struct {
	Code    Code
	Message string
	Err     error
	// Status carries an upstream HTTP status to pass through (API_ERROR only).
	Status int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewWithStatus creates a domain error that remembers the upstream HTTP status.
func NewWithStatus(code Code, status int, msg string) error {
	return &Error{Code: code, Message: msg, Status: status}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err, Status: existing.Status}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or CodeServerError.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeServerError
}
