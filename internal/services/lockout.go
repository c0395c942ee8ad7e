package services

import (
	"time"

	"github.com/you/erpauth/domain"
)

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 15 * time.Minute
)

// LockoutPolicy decides account locks from the failure counter alone
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// LockoutDecision is the outcome of one failed sign-in
type LockoutDecision struct {
	Locked      bool
	LockedUntil time.Time
	Remaining   int
}

// NewLockoutPolicy fills zero values with the defaults
func NewLockoutPolicy(threshold int, duration time.Duration) LockoutPolicy {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return LockoutPolicy{Threshold: threshold, Duration: duration}
}

// IsLocked reports whether the account is inside an active lock window
func (p LockoutPolicy) IsLocked(user *domain.User, now time.Time) bool {
	return user.AccountLockedUntil != nil && now.Before(*user.AccountLockedUntil)
}

// RemainingLock returns the time left on the lock, zero when unlocked
func (p LockoutPolicy) RemainingLock(user *domain.User, now time.Time) time.Duration {
	if !p.IsLocked(user, now) {
		return 0
	}
	return user.AccountLockedUntil.Sub(now)
}

// LockUntil is the lock deadline a failure at now would set
func (p LockoutPolicy) LockUntil(now time.Time) time.Time {
	return now.Add(p.Duration)
}

// Failure evaluates the counter value after the increment
func (p LockoutPolicy) Failure(attempts int, now time.Time) LockoutDecision {
	if attempts >= p.Threshold {
		return LockoutDecision{Locked: true, LockedUntil: p.LockUntil(now)}
	}
	return LockoutDecision{Remaining: p.Threshold - attempts}
}

// NeedsReset is false when a reset would not change anything
func (p LockoutPolicy) NeedsReset(user *domain.User) bool {
	return user.FailedLoginAttempts > 0 || user.AccountLockedUntil != nil
}
