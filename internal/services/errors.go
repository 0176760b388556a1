package services

import "errors"

var (
	// ErrRateLimitExceeded is returned when an address has used up its
	// device-code issuance budget for the current window.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidOrExpiredCode is returned by approval when the user code does
	// not match a live device authorization.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

	// ErrUnauthorized covers unknown, revoked and expired credentials alike.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCliTokenNotFound is returned when a token id does not belong to the caller.
	ErrCliTokenNotFound = errors.New("cli token not found")

	// ErrInvalidLabel is returned by rename for empty or oversized labels.
	ErrInvalidLabel = errors.New("invalid token label")

	ErrUserNotFound = errors.New("user not found")
)
