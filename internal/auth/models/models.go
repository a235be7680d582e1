package models

import (
	"time"

	"jamsession/pkg/domain"
)

// SessionTTL is the fixed lifetime of a session token and its cookie.
const SessionTTL = 8 * time.Hour

// ExpiresAtLayout renders expiry instants as ISO-8601 UTC with milliseconds.
const ExpiresAtLayout = "2006-01-02T15:04:05.000Z"

// FormatExpiresAt renders t in the wire format used by login and validate.
func FormatExpiresAt(t time.Time) string {
	return t.UTC().Format(ExpiresAtLayout)
}

// AuthorizationResult is a successful credential validation.
// Resources is never nil.
type AuthorizationResult struct {
	Success   bool
	Resources []domain.Resource
}

// LoginResult is what a successful login hands to the transport layer.
// Token is only ever written into the session cookie.
type LoginResult struct {
	Token     string
	User      domain.User
	CSRFToken string
	ExpiresAt time.Time
}

// SessionResult is a verified session reconstructed from token claims.
type SessionResult struct {
	User      domain.User
	CSRFToken string
	ExpiresAt time.Time
}

// AccessDeniedError carries the gate's reason code through the error chain.
type AccessDeniedError struct {
	Reason  string
	Message string
}

func (e *AccessDeniedError) Error() string {
	return e.Message
}
