package core

import "context"

// ExternalProfile is a verified identity handed over by the upstream
// identity provider once its own handshake has completed.
type ExternalProfile struct {
	ExternalID string
	Email      string // Optional
	Name       string // Optional
	Picture    string // Optional
}

// CliTokenValidator resolves a raw CLI bearer token to its owner.
// Implemented by services.CliTokenService; consumed by the auth middleware.
type CliTokenValidator interface {
	ValidateCliToken(ctx context.Context, rawToken string) (string, error)
}

// AccessTokenValidator resolves a browser session access token to its subject.
type AccessTokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (string, error)
}

// RefreshTokenValidator resolves a raw refresh token to the user holding it
// in their refresh slot, without rotating it.
type RefreshTokenValidator interface {
	ValidateRefreshToken(ctx context.Context, rawToken string) (string, error)
}
