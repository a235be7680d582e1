package models

import "jamsession/pkg/domain"

// This file contains transport-layer response models for JSON output.

// LoginResponse is the success payload of POST /auth/login.
type LoginResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	User      domain.User `json:"user"`
	CSRFToken string      `json:"csrfToken"`
	ExpiresAt string      `json:"expiresAt"`
}

// LockoutResponse is the 429 payload of POST /auth/login.
type LockoutResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	RemainingMs int64  `json:"remainingMs"`
}

// AccessDeniedResponse is the 403 payload of POST /auth/login.
type AccessDeniedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// ValidateResponse is the success payload of GET /session/validate.
type ValidateResponse struct {
	Valid     bool        `json:"valid"`
	User      domain.User `json:"user"`
	CSRFToken string      `json:"csrfToken"`
	ExpiresAt string      `json:"expiresAt"`
}

// SessionErrorResponse is the failure envelope of the session endpoints.
type SessionErrorResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

// CSRFResponse is the success payload of POST /session/verify-csrf.
type CSRFResponse struct {
	Valid bool `json:"valid"`
}

// LogoutResponse is the payload of POST /session/logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NotFoundResponse is returned for unknown routes.
type NotFoundResponse struct {
	Error string `json:"error"`
}
