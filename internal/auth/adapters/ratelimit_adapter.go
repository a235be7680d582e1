package adapters

import (
	"context"

	"jamsession/internal/auth/ports"
	"jamsession/internal/ratelimit/service/authlockout"
)

// RateLimitAdapter is an in-process adapter that implements ports.RateLimitPort
// by calling the lockout service directly.
type RateLimitAdapter struct {
	lockouts *authlockout.Service
}

// NewRateLimitAdapter creates a new in-process ratelimit adapter.
func NewRateLimitAdapter(lockouts *authlockout.Service) ports.RateLimitPort {
	return &RateLimitAdapter{lockouts: lockouts}
}

func (a *RateLimitAdapter) CheckLockout(ctx context.Context, clientAddress string) (*ports.LockoutStatus, error) {
	check, err := a.lockouts.Check(ctx, clientAddress)
	if err != nil {
		return nil, err
	}
	return &ports.LockoutStatus{
		Blocked:    check.Blocked,
		RetryAfter: check.RetryAfter,
		Message:    check.Message,
	}, nil
}

func (a *RateLimitAdapter) RecordFailure(ctx context.Context, clientAddress string) error {
	_, err := a.lockouts.RecordFailure(ctx, clientAddress)
	return err
}

func (a *RateLimitAdapter) RecordSuccess(ctx context.Context, clientAddress string) error {
	return a.lockouts.RecordSuccess(ctx, clientAddress)
}
