package store

import "errors"

var (
	// ErrUnsupportedDriver is returned by New for an unknown DATABASE_DRIVER.
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert collides with a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDeviceAuthorizationClaimed is returned by ClaimDeviceAuthorization when
	// the record was already consumed by a concurrent poll (0 rows deleted).
	ErrDeviceAuthorizationClaimed = errors.New("device authorization already claimed")

	// ErrRefreshTokenStale is returned by RotateRefreshToken when the slot no
	// longer holds the presented hash.
	ErrRefreshTokenStale = errors.New("refresh token no longer current")
)
