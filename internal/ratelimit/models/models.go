package models

import (
	"fmt"
	"math"
	"time"
)

// AuthLockout is the failure history of one client address.
type AuthLockout struct {
	Identifier    string     `json:"identifier"`
	FailureCount  int        `json:"failure_count"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	LastFailureAt time.Time  `json:"last_failure_at"`
}

// IsLockedAt reports whether the lockout window is still open at now.
func (a *AuthLockout) IsLockedAt(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// LockoutElapsedAt reports whether a lockout was set and has run out at now.
func (a *AuthLockout) LockoutElapsedAt(now time.Time) bool {
	return a.LockedUntil != nil && !now.Before(*a.LockedUntil)
}

// LockoutCheck is the outcome of a pre-login check.
type LockoutCheck struct {
	Blocked    bool
	RetryAfter time.Duration
	Message    string
}

// NewBlockedCheck builds the blocked outcome for the remaining lockout time.
func NewBlockedCheck(remaining time.Duration) *LockoutCheck {
	minutes := int(math.Ceil(remaining.Minutes()))
	unit := "minute"
	if minutes > 1 {
		unit = "minutes"
	}
	return &LockoutCheck{
		Blocked:    true,
		RetryAfter: remaining,
		Message:    fmt.Sprintf("Too many failed login attempts. Please try again in %d %s.", minutes, unit),
	}
}

// LockoutError carries the retry window of a blocked login through the error chain.
type LockoutError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *LockoutError) Error() string {
	return e.Message
}

// RetryAfterSeconds is the Retry-After header value, rounded up.
func (e *LockoutError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
