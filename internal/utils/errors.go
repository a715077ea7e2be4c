package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrSessionNotFound    = errors.New("SESSION_NOT_FOUND")
	ErrSessionExpired     = errors.New("SESSION_EXPIRED")
	ErrInactiveAccount    = errors.New("INACTIVE_ACCOUNT")
	ErrTooManyAttempts    = errors.New("TOO_MANY_ATTEMPTS")
	ErrComparisonNotFound = errors.New("COMPARISON_NOT_FOUND")
	ErrInvalidSignedValue = errors.New("INVALID_SIGNED_VALUE")
)
