package core

import (
	"context"
	"time"
)

// TokenResult is the outcome of a token generation call.
type TokenResult struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
}

// TokenValidationResult is the outcome of a token validation call.
type TokenValidationResult struct {
	Subject   string
	ExpiresAt time.Time
}

// AccessTokenProvider signs and verifies short-lived session access tokens.
type AccessTokenProvider interface {
	GenerateAccessToken(ctx context.Context, subject string) (*TokenResult, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*TokenValidationResult, error)
	Name() string
}
