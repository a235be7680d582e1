// Package jwttoken mints and verifies the compact HS256 session token carried
// in the dj_session cookie. Claims are signed, not encrypted.
package jwttoken

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jamsession/pkg/domain"
)

// Claims is the session payload. Timestamps are epoch milliseconds.
type Claims struct {
	Subject   string            `json:"sub"`
	Role      domain.Role       `json:"role"`
	Projects  []domain.Resource `json:"projects"`
	CSRF      string            `json:"csrf"`
	IssuedAt  int64             `json:"iat"`
	ExpiresAt int64             `json:"exp"`
}

// Expiry returns ExpiresAt as a time.
func (c Claims) Expiry() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// User rebuilds the public user view from the claims.
func (c Claims) User() domain.User {
	projects := c.Projects
	if projects == nil {
		projects = []domain.Resource{}
	}
	return domain.User{Username: c.Subject, Role: c.Role, Projects: projects}
}

// The jwt.Claims methods let the token be built with jwt.NewWithClaims.

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.ExpiresAt)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAt)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetSubject() (string, error)             { return c.Subject, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// Reason classifies a verification failure.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonBadSignature Reason = "bad_signature"
	ReasonUndecodable  Reason = "undecodable"
	ReasonExpired      Reason = "expired"
)

var reasonMessages = map[Reason]string{
	ReasonMalformed:    "Invalid token format",
	ReasonBadSignature: "Invalid signature",
	ReasonUndecodable:  "Token decode failed",
	ReasonExpired:      "Token expired",
}

// VerifyError is returned by Verify for every rejected token.
type VerifyError struct {
	Reason Reason
	Err    error
}

func (e *VerifyError) Error() string {
	return reasonMessages[e.Reason]
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the verification reason from err, or "" if err is not a VerifyError.
func ReasonOf(err error) Reason {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

// Mint signs claims into header.payload.signature.
func Mint(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks structure, signature, payload and expiry, in that order.
// The signature is recomputed from the first two segments on every call.
func Verify(token string, secret []byte, now time.Time) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &VerifyError{Reason: ReasonMalformed}
	}

	sig, err := jwt.SigningMethodHS256.Sign(parts[0]+"."+parts[1], secret)
	if err != nil {
		return nil, &VerifyError{Reason: ReasonBadSignature, Err: err}
	}
	expected := base64.RawURLEncoding.EncodeToString(sig)
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, &VerifyError{Reason: ReasonBadSignature}
	}

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, &VerifyError{Reason: ReasonUndecodable, Err: err}
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, &VerifyError{Reason: ReasonUndecodable, Err: err}
	}

	if claims.ExpiresAt != 0 && now.UnixMilli() > claims.ExpiresAt {
		return nil, &VerifyError{Reason: ReasonExpired}
	}
	return &claims, nil
}
