package service

import (
	"context"
	"crypto/subtle"

	"jamsession/internal/auth/models"
	jwttoken "jamsession/internal/jwt_token"
	dErrors "jamsession/pkg/domain-errors"
	"jamsession/pkg/requestcontext"
)

const (
	msgNoSession    = "No session found"
	msgMissingCSRF  = "Missing token or CSRF"
	msgInvalidCSRF  = "Invalid session"
	msgCSRFMismatch = "CSRF token mismatch"
)

// Validate verifies a session token and rebuilds the session from its claims.
// Failures are unauthorized errors whose message is the verification reason.
func (s *Service) Validate(ctx context.Context, token string) (*models.SessionResult, error) {
	if token == "" {
		s.metrics.IncrementSessionValidation("missing")
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgNoSession)
	}

	claims, err := jwttoken.Verify(token, s.secret, requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncrementSessionValidation(string(jwttoken.ReasonOf(err)))
		s.logger.DebugContext(ctx, "session token rejected", "reason", jwttoken.ReasonOf(err))
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, err.Error())
	}

	s.metrics.IncrementSessionValidation("valid")
	return &models.SessionResult{
		User:      claims.User(),
		CSRFToken: claims.CSRF,
		ExpiresAt: claims.Expiry().UTC(),
	}, nil
}

// VerifyCSRF checks that csrfToken matches the secret bound into the session.
func (s *Service) VerifyCSRF(ctx context.Context, token, csrfToken string) error {
	if token == "" || csrfToken == "" {
		s.metrics.IncrementCSRFVerification("missing")
		return dErrors.New(dErrors.CodeBadRequest, msgMissingCSRF)
	}

	claims, err := jwttoken.Verify(token, s.secret, requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncrementCSRFVerification("invalid_session")
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, msgInvalidCSRF)
	}

	if subtle.ConstantTimeCompare([]byte(claims.CSRF), []byte(csrfToken)) != 1 {
		s.metrics.IncrementCSRFVerification("mismatch")
		return dErrors.New(dErrors.CodeForbidden, msgCSRFMismatch)
	}

	s.metrics.IncrementCSRFVerification("valid")
	return nil
}
