// Package authlockout locks out client addresses after repeated failed logins.
package authlockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jamsession/internal/ratelimit/config"
	"jamsession/internal/ratelimit/metrics"
	"jamsession/internal/ratelimit/models"
	"jamsession/internal/ratelimit/observability"
	dErrors "jamsession/pkg/domain-errors"
	platformsync "jamsession/pkg/platform/sync"
	"jamsession/pkg/requestcontext"
)

type Store interface {
	Get(ctx context.Context, identifier string) (*models.AuthLockout, error)
	RecordFailure(ctx context.Context, identifier string, now time.Time) (*models.AuthLockout, error)
	Update(ctx context.Context, record *models.AuthLockout) error
	Clear(ctx context.Context, identifier string) error
}

type Service struct {
	store   Store
	locks   *platformsync.ShardedMutex // serializes read-modify-write per address
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("auth lockout store is required")
	}

	svc := &Service{store: store, locks: platformsync.NewShardedMutex()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check reports whether clientAddress is currently locked out. A lockout that
// has run out is purged, so the address starts again from zero failures.
func (s *Service) Check(ctx context.Context, clientAddress string) (*models.LockoutCheck, error) {
	now := requestcontext.Now(ctx)
	s.locks.Lock(clientAddress)
	defer s.locks.Unlock(clientAddress)

	record, err := s.store.Get(ctx, clientAddress)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get auth lockout record")
	}
	if record == nil {
		return &models.LockoutCheck{}, nil
	}

	if record.IsLockedAt(now) {
		s.metrics.IncrementBlockedChecks()
		return models.NewBlockedCheck(record.LockedUntil.Sub(now)), nil
	}

	if record.LockoutElapsedAt(now) && record.FailureCount >= config.LockoutThreshold {
		if err := s.store.Clear(ctx, clientAddress); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear expired auth lockout")
		}
		observability.LogAudit(ctx, s.logger, "auth_lockout_expired", clientAddress)
	}

	return &models.LockoutCheck{}, nil
}

// RecordFailure counts a failed login. The lockout starts when the count
// reaches the threshold and is never extended by later failures.
func (s *Service) RecordFailure(ctx context.Context, clientAddress string) (*models.AuthLockout, error) {
	now := requestcontext.Now(ctx)
	s.locks.Lock(clientAddress)
	defer s.locks.Unlock(clientAddress)

	current, err := s.store.RecordFailure(ctx, clientAddress, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record auth failure")
	}

	if current.LockoutElapsedAt(now) {
		// Stale lockout that no Check purged: this failure opens a new cycle.
		if err := s.store.Clear(ctx, clientAddress); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear expired auth lockout")
		}
		if current, err = s.store.RecordFailure(ctx, clientAddress, now); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record auth failure")
		}
	}
	s.metrics.IncrementAuthFailures()

	if current.FailureCount >= config.LockoutThreshold && current.LockedUntil == nil {
		lockedUntil := now.Add(config.LockoutDuration)
		current.LockedUntil = &lockedUntil
		if err := s.store.Update(ctx, current); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update auth lockout record")
		}
		s.metrics.IncrementAuthLockouts()
		observability.LogAudit(ctx, s.logger, "auth_lockout_triggered", clientAddress,
			"failure_count", current.FailureCount,
			"locked_until", lockedUntil,
		)
	}

	return current, nil
}

// RecordSuccess forgets every failure of clientAddress.
func (s *Service) RecordSuccess(ctx context.Context, clientAddress string) error {
	s.locks.Lock(clientAddress)
	defer s.locks.Unlock(clientAddress)

	if err := s.store.Clear(ctx, clientAddress); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear auth failures")
	}
	observability.LogAudit(ctx, s.logger, "auth_lockout_cleared", clientAddress)
	return nil
}
