package models

import (
	"encoding/base64"
	"strings"

	dErrors "jamsession/pkg/domain-errors"
)

// LoginRequest is the body of POST /auth/login. Auth is base64("identifier:secret").
type LoginRequest struct {
	Auth string `json:"auth"`
}

// CSRFRequest is the body of POST /session/verify-csrf.
type CSRFRequest struct {
	CSRFToken string `json:"csrfToken"`
}

// Credentials is the decoded identity claim. The secret is never logged.
type Credentials struct {
	Identifier string
	Secret     string
}

// ParseCredentials decodes the Basic-style auth field. The secret may itself
// contain colons; only the first one separates it from the identifier.
func (r *LoginRequest) ParseCredentials() (Credentials, error) {
	if r.Auth == "" {
		return Credentials{}, dErrors.New(dErrors.CodeMissingAuth, "Authentication credentials required")
	}
	raw, err := base64.StdEncoding.DecodeString(r.Auth)
	if err != nil {
		return Credentials{}, dErrors.Wrap(err, dErrors.CodeInvalidAuth, "Invalid authentication format")
	}
	identifier, secret, ok := strings.Cut(string(raw), ":")
	if !ok || identifier == "" {
		return Credentials{}, dErrors.New(dErrors.CodeInvalidAuth, "Invalid authentication format")
	}
	return Credentials{Identifier: identifier, Secret: secret}, nil
}
