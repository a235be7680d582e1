package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"jamsession/internal/auth/models"
	rlmodels "jamsession/internal/ratelimit/models"
	jwttoken "jamsession/internal/jwt_token"
	dErrors "jamsession/pkg/domain-errors"
	"jamsession/pkg/requestcontext"
)

const (
	csrfTokenBytes = 32
	msgServerError = "An error occurred. Please try again."
)

// Login runs the full login pipeline for one attempt from clientAddress:
// credential parsing, lockout check, access gate, credential validation,
// then token minting. The validator is never reached when the gate denies.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, clientAddress string) (*models.LoginResult, error) {
	start := time.Now()
	result, err := s.login(ctx, req, clientAddress)

	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	s.metrics.IncrementLoginAttempt(outcome)
	s.metrics.ObserveLoginDuration(float64(time.Since(start).Milliseconds()))
	return result, err
}

func (s *Service) login(ctx context.Context, req *models.LoginRequest, clientAddress string) (*models.LoginResult, error) {
	creds, err := req.ParseCredentials()
	if err != nil {
		return nil, err
	}

	status, err := s.limiter.CheckLockout(ctx, clientAddress)
	if err != nil {
		s.logger.ErrorContext(ctx, "lockout check failed", "error", err)
		return nil, &dErrors.Error{Code: dErrors.CodeServerError, Message: msgServerError, Err: err}
	}
	if status.Blocked {
		s.logAudit(ctx, "login_blocked", clientAddress,
			"retry_after_ms", status.RetryAfter.Milliseconds(),
		)
		return nil, dErrors.Wrap(
			&rlmodels.LockoutError{RetryAfter: status.RetryAfter, Message: status.Message},
			dErrors.CodeRateLimited, status.Message,
		)
	}

	decision := s.gate.CheckAccess(ctx, creds.Identifier)
	if !decision.Allowed {
		s.recordFailure(ctx, clientAddress)
		s.logAudit(ctx, "access_gate_denied", clientAddress,
			"reason", string(decision.Reason),
		)
		return nil, dErrors.Wrap(
			&models.AccessDeniedError{Reason: string(decision.Reason), Message: decision.Message},
			dErrors.CodeAccessDenied, decision.Message,
		)
	}

	auth, err := s.validator.Validate(ctx, creds.Identifier, creds.Secret)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAuthFailed) {
			s.recordFailure(ctx, clientAddress)
			s.logAudit(ctx, "login_failed", clientAddress, "reason", "invalid_credentials")
			return nil, err
		}
		if dErrors.CodeOf(err) == dErrors.CodeServerError {
			return nil, dErrors.Wrap(err, dErrors.CodeServerError, msgServerError)
		}
		return nil, err
	}

	if err := s.limiter.RecordSuccess(ctx, clientAddress); err != nil {
		s.logger.WarnContext(ctx, "failed to reset lockout after login", "error", err)
	}

	result, err := s.issueSession(ctx, creds.Identifier, auth)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "login_succeeded", clientAddress,
		"role", result.User.Role.String(),
		"project_count", len(result.User.Projects),
	)
	return result, nil
}

func (s *Service) issueSession(ctx context.Context, identifier string, auth *models.AuthorizationResult) (*models.LoginResult, error) {
	csrf, err := newCSRFToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeServerError, msgServerError)
	}

	now := requestcontext.Now(ctx)
	claims := jwttoken.Claims{
		Subject:   identifier,
		Role:      DeriveRole(identifier),
		Projects:  auth.Resources,
		CSRF:      csrf,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(models.SessionTTL).UnixMilli(),
	}
	token, err := jwttoken.Mint(claims, s.secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeServerError, msgServerError)
	}

	return &models.LoginResult{
		Token:     token,
		User:      claims.User(),
		CSRFToken: csrf,
		ExpiresAt: claims.Expiry().UTC(),
	}, nil
}

// recordFailure counts a failed attempt. A limiter error is logged but does
// not change the response already decided for the caller.
func (s *Service) recordFailure(ctx context.Context, clientAddress string) {
	if err := s.limiter.RecordFailure(ctx, clientAddress); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure", "error", err)
	}
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
