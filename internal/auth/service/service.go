// Package service orchestrates installer login and verifies session tokens.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccessGate,CredentialValidator
//go:generate mockgen -source=../ports/ratelimit.go -destination=mocks/ratelimit_mock.go -package=mocks RateLimitPort

import (
	"context"
	"errors"
	"log/slog"

	"jamsession/internal/auth/accessgate"
	"jamsession/internal/auth/metrics"
	"jamsession/internal/auth/models"
	"jamsession/internal/auth/ports"
)

// AccessGate decides whether an identifier may use the installer app at all.
// Implementations fail secure: every error becomes a denial.
type AccessGate interface {
	CheckAccess(ctx context.Context, identifier string) accessgate.Decision
}

// CredentialValidator proves identifier/secret and returns the authorized resources.
// Errors are domain errors carrying the login error code.
type CredentialValidator interface {
	Validate(ctx context.Context, identifier, secret string) (*models.AuthorizationResult, error)
}

// Config holds the signing secret shared by Login, Validate and VerifyCSRF.
type Config struct {
	Secret []byte
}

type Service struct {
	limiter   ports.RateLimitPort
	gate      AccessGate
	validator CredentialValidator
	secret    []byte
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(limiter ports.RateLimitPort, gate AccessGate, validator CredentialValidator, cfg *Config, opts ...Option) (*Service, error) {
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if gate == nil {
		return nil, errors.New("access gate is required")
	}
	if validator == nil {
		return nil, errors.New("credential validator is required")
	}
	if cfg == nil || len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}

	svc := &Service{
		limiter:   limiter,
		gate:      gate,
		validator: validator,
		secret:    cfg.Secret,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}
