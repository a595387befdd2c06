// Package security provides the vault's security policies: brute-force
// lockout, cross-entry password-reuse detection, and master-password
// strength assessment.
package security

import (
	"context"
	"time"
)

// Lockout defaults.
const (
	// DefaultMaxAttempts is the number of in-window failures that lock an
	// account.
	DefaultMaxAttempts = 3

	// DefaultLockoutWindow is the trailing interval over which failures
	// count toward a lock.
	DefaultLockoutWindow = 15 * time.Minute
)

// FailureHistory is the slice of attempt storage the lockout policy reads.
// The policy never writes history; callers append attempts and clear
// failures around their own authentication decisions.
type FailureHistory interface {
	CountRecentFailures(ctx context.Context, username string, since time.Time) (int, error)
	MostRecentFailureTime(ctx context.Context, username string) (time.Time, bool, error)
}

// LockoutPolicy derives an account's authentication availability from its
// recent failed-attempt history. The state is computed, never stored: an
// account is locked while it has MaxAttempts or more failures inside the
// trailing Window.
type LockoutPolicy struct {
	history     FailureHistory
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLockoutPolicy creates a policy over the given attempt history.
// Non-positive maxAttempts or window fall back to the defaults.
func NewLockoutPolicy(history FailureHistory, maxAttempts int, window time.Duration) *LockoutPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &LockoutPolicy{
		history:     history,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Window returns the policy's lockout window.
func (p *LockoutPolicy) Window() time.Duration {
	return p.window
}

// CheckLocked reports whether authentication for the username is currently
// blocked, and if so, for how much longer.
//
// The failure count is evaluated over a sliding window anchored at now
// minus the lockout window. A lock is not a fixed future timestamp: it
// expires one window after the newest recorded failure, not the first.
func (p *LockoutPolicy) CheckLocked(ctx context.Context, username string) (locked bool, remaining time.Duration, err error) {
	now := p.now()

	failures, err := p.history.CountRecentFailures(ctx, username, now.Add(-p.window))
	if err != nil {
		return false, 0, err
	}
	if failures < p.maxAttempts {
		return false, 0, nil
	}

	newest, ok, err := p.history.MostRecentFailureTime(ctx, username)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		// Failures counted above but none recorded now: history was cleared
		// between the two reads. Treat as open.
		return false, 0, nil
	}

	remaining = p.window - now.Sub(newest)
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}
