package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Authentication errors
var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrAccountDeactivated       = errors.New("account is deactivated")
	ErrAccountLocked            = errors.New("account is temporarily locked")
	ErrUserNotFound             = errors.New("user not found")
	ErrPasswordValidationFailed = errors.New("password does not meet requirements")
)

// Verification code errors
var (
	ErrEmailNotFound   = errors.New("email not found")
	ErrNoCodeFound     = errors.New("no verification code found")
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrDeliveryFailed  = errors.New("verification code could not be delivered")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenSignature = fmt.Errorf("%w: bad signature", ErrTokenInvalid)
)

// Session errors
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionExpiredOrInvalid = errors.New("session expired or invalid")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
	ErrInvalidTokenType        = errors.New("invalid token type")
)

// Infrastructure errors
var (
	ErrConfiguration = errors.New("configuration error")
	ErrInternal      = errors.New("an internal error occurred")
)

// LockedError carries the remaining lockout time
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, try again in %d minute(s)", ErrAccountLocked, e.Minutes())
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// Minutes rounds the remaining lockout up to whole minutes
func (e *LockedError) Minutes() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(e.Remaining.Minutes()))
}

// CredentialsError carries the number of sign-in attempts left before lockout
type CredentialsError struct {
	RemainingAttempts int
}

func (e *CredentialsError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialsError) Unwrap() error { return ErrInvalidCredentials }

// InvalidCodeError carries the number of verification attempts left
type InvalidCodeError struct {
	RemainingAttempts int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("%s, %d attempt(s) remaining", ErrInvalidCode, e.RemainingAttempts)
}

func (e *InvalidCodeError) Unwrap() error { return ErrInvalidCode }

// PasswordPolicyError lists every violated password rule
type PasswordPolicyError struct {
	Violations []string
}

func (e *PasswordPolicyError) Error() string {
	return ErrPasswordValidationFailed.Error() + ": " + strings.Join(e.Violations, "; ")
}

func (e *PasswordPolicyError) Unwrap() error { return ErrPasswordValidationFailed }
