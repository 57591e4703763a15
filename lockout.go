package users

import (
	"context"
)

// LockoutPolicy reacts to authentication outcomes and decides whether an
// account should be locked based on the attempt tracker's state. It is
// invoked synchronously from the login pipeline; there is no background
// event dispatch.
type LockoutPolicy struct {
	tracker *LoginAttemptTracker
	store   UserStore
	logger  Logger
}

// NewLockoutPolicy will create a new LockoutPolicy
func NewLockoutPolicy(tracker *LoginAttemptTracker, store UserStore, logger Logger) *LockoutPolicy {
	if logger == nil {
		logger = defLogger{}
	}
	return &LockoutPolicy{
		tracker: tracker,
		store:   store,
		logger:  logger,
	}
}

// OnLoginFailure records a failed credential check for an identity that may
// not resolve to an account; the identity is just the claimed username.
func (p *LockoutPolicy) OnLoginFailure(identity string) {
	if identity == "" {
		return
	}
	p.tracker.RecordFailure(identity)
}

// OnLoginSuccess clears the user's counter after a successful
// authentication.
func (p *LockoutPolicy) OnLoginSuccess(user *User) {
	if user == nil {
		return
	}
	p.tracker.Evict(user.Username)
}

// EnsureNotLocked runs the admission check ahead of the password compare.
//
// An unlocked account is re-evaluated against the tracker and the locked
// flag is persisted the moment it flips. An account that is already locked
// instead has its counter evicted: a locked account always re-enters
// inspection with a clean slate, so unlocking it never inherits stale
// failures. The two branches are intentionally not symmetric.
//
// Returns ErrAccountLocked or ErrAccountDisabled when the account must not
// proceed to credential verification.
func (p *LockoutPolicy) EnsureNotLocked(ctx context.Context, user *User) error {
	if user == nil {
		return ErrUserNotFound
	}

	if user.IsNotLocked {
		user.IsNotLocked = !p.tracker.Exceeded(user.Username)
		if !user.IsNotLocked {
			p.logger.Warn("locking account after too many failed attempts: %s", user.Username)
			if _, err := p.store.Save(ctx, user); err != nil {
				p.logger.Error("failed to persist locked flag for %s: %v", user.Username, err)
			}
		}
	} else {
		p.tracker.Evict(user.Username)
	}

	if !user.IsNotLocked {
		return ErrAccountLocked
	}

	if !user.IsActive {
		return ErrAccountDisabled
	}

	return nil
}
