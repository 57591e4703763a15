package users

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// Authenticator drives the login pipeline: lookup, lockout admission,
// password verification, bookkeeping, and token issuance.
type Authenticator struct {
	store     UserStore
	passwords PasswordAuthenticator
	tokens    *TokenService
	lockout   *LockoutPolicy
	logger    Logger
	clock     func() time.Time
}

// NewAuthenticator will create a new Authenticator
func NewAuthenticator(store UserStore, tokens *TokenService, lockout *LockoutPolicy, logger Logger) *Authenticator {
	if logger == nil {
		logger = defLogger{}
	}
	return &Authenticator{
		store:     store,
		passwords: NewPasswordAuthenticator(),
		tokens:    tokens,
		lockout:   lockout,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithPasswordAuthenticator overrides the password verifier.
func (a *Authenticator) WithPasswordAuthenticator(p PasswordAuthenticator) *Authenticator {
	if p != nil {
		a.passwords = p
	}
	return a
}

// WithClock overrides the time source used for login timestamps.
func (a *Authenticator) WithClock(clock func() time.Time) *Authenticator {
	if clock != nil {
		a.clock = clock
	}
	return a
}

// Login authenticates the username and password pair and, on success,
// returns the refreshed user record along with a signed token.
//
// Unknown usernames and wrong passwords both record a failed attempt and
// both resolve to ErrMismatchedHashAndPassword. The lockout admission check
// runs before the password compare, so a locked account is rejected as
// locked even when the credentials are correct.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*User, string, error) {
	user, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.lockout.OnLoginFailure(username)
			return nil, "", ErrMismatchedHashAndPassword
		}
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if err := a.lockout.EnsureNotLocked(ctx, user); err != nil {
		return nil, "", err
	}

	if err := a.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			a.logger.Debug("password mismatch for user: %s", username)
			a.lockout.OnLoginFailure(username)
			return nil, "", ErrMismatchedHashAndPassword
		}
		return nil, "", err
	}

	a.lockout.OnLoginSuccess(user)

	now := a.clock()
	user.LastLoginDisplayAt = user.LastLoginAt
	user.LastLoginAt = &now

	user, err = a.store.Save(ctx, user)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "failed to record login")
	}

	token, err := a.tokens.Generate(user.Identity(), user.Authorities)
	if err != nil {
		return nil, "", err
	}

	a.logger.Info("user logged in: %s", user.Username)

	return user, token, nil
}
