package ports

import (
	"context"
	"time"
)

// RateLimitPort is the login flow's view of the failed-attempt limiter.
// The limiter is keyed by client address, never by the claimed identifier.
type RateLimitPort interface {
	// CheckLockout reports whether the address is currently locked out.
	CheckLockout(ctx context.Context, clientAddress string) (*LockoutStatus, error)

	// RecordFailure counts a failed login (gate denial or rejected credentials).
	RecordFailure(ctx context.Context, clientAddress string) error

	// RecordSuccess forgets all failures for the address.
	RecordSuccess(ctx context.Context, clientAddress string) error
}

// LockoutStatus is the port model for a lockout check.
type LockoutStatus struct {
	Blocked    bool
	RetryAfter time.Duration
	Message    string
}
