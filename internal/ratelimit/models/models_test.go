package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBlockedCheck(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"single minute", 30 * time.Second, "Too many failed login attempts. Please try again in 1 minute."},
		{"exact minute", time.Minute, "Too many failed login attempts. Please try again in 1 minute."},
		{"rounds up", 61 * time.Second, "Too many failed login attempts. Please try again in 2 minutes."},
		{"full window", 15 * time.Minute, "Too many failed login attempts. Please try again in 15 minutes."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewBlockedCheck(tt.remaining)
			assert.True(t, check.Blocked)
			assert.Equal(t, tt.remaining, check.RetryAfter)
			assert.Equal(t, tt.want, check.Message)
		})
	}
}

func TestLockoutErrorRetryAfterSeconds(t *testing.T) {
	err := &LockoutError{RetryAfter: 1500 * time.Millisecond}
	assert.Equal(t, 2, err.RetryAfterSeconds())
}

func TestAuthLockoutWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	until := now.Add(time.Minute)
	record := &AuthLockout{LockedUntil: &until}

	assert.True(t, record.IsLockedAt(now))
	assert.False(t, record.LockoutElapsedAt(now))
	assert.False(t, record.IsLockedAt(until))
	assert.True(t, record.LockoutElapsedAt(until))

	assert.False(t, (&AuthLockout{FailureCount: 3}).IsLockedAt(now))
}
