package users

import (
	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside structured errors.
const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeAccountLocked    = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled  = "ACCOUNT_DISABLED"
	TextCodeUserNotFound     = "USER_NOT_FOUND"
	TextCodeEmailNotFound    = "EMAIL_NOT_FOUND"
	TextCodeUsernameExists   = "USERNAME_EXISTS"
	TextCodeEmailExists      = "EMAIL_EXISTS"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeTokenBadSig      = "TOKEN_SIGNATURE_INVALID"
	TextCodeNotAnImage       = "NOT_AN_IMAGE_FILE"
	TextCodeValidationFailed = "VALIDATION_FAILED"
)

// ErrMismatchedHashAndPassword is returned when the supplied password does
// not match the stored hash. Lookups that miss during login resolve to this
// same error so the response does not leak which accounts exist.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccountLocked is returned when the account's locked flag is set,
// typically after too many failed login attempts.
var ErrAccountLocked = errors.New("your account has been locked, please contact administration", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when the account's active flag is off.
var ErrAccountDisabled = errors.New("your account has been disabled, please contact administration", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrUserNotFound is the error we return for non found users
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrEmailNotFound is returned by password reset when no account matches
// the given email address.
var ErrEmailNotFound = errors.New("no user found for email", errors.CategoryNotFound).
	WithTextCode(TextCodeEmailNotFound).
	WithCode(errors.CodeNotFound)

// ErrUsernameExists is returned when creating or renaming a user would
// collide with an existing username.
var ErrUsernameExists = errors.New("username already exists", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameExists).
	WithCode(errors.CodeConflict)

// ErrEmailExists is returned when creating or updating a user would collide
// with an existing email address.
var ErrEmailExists = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrTokenExpired marks tokens past their expires-at claim.
var ErrTokenExpired = errors.New("authentication token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignatureInvalid marks tokens whose signature or issuer does not
// verify against the configured signing key. Never folded into a generic
// parse failure.
var ErrTokenSignatureInvalid = errors.New("authentication token cannot be verified", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSig).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed marks tokens that do not parse as compact JWS at all.
var ErrTokenMalformed = errors.New("authentication token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNotAnImage is returned when a profile image upload is not an image file.
var ErrNotAnImage = errors.New("uploaded file is not an image file", errors.CategoryBadInput).
	WithTextCode(TextCodeNotAnImage).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString is returned by helpers that refuse blank input.
var ErrNoEmptyString = errors.New("value must not be an empty string", errors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired token errors
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired)
}

// IsTokenVerificationError reports whether err is any of the token decode
// failures: malformed, bad signature, or expired.
func IsTokenVerificationError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignatureInvalid) ||
		errors.Is(err, ErrTokenExpired)
}
