package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

// bearerType is the token_type reported for session access tokens.
const bearerType = "Bearer"

var (
	// ErrTokenGeneration is returned when signing fails or the subject is empty.
	ErrTokenGeneration = errors.New("access token: signing failed")
	// ErrInvalidToken covers bad signatures, wrong issuer and malformed input.
	ErrInvalidToken = errors.New("access token: invalid")
	// ErrExpiredToken is kept apart so callers can prompt a refresh.
	ErrExpiredToken = errors.New("access token: expired")
)

var _ core.AccessTokenProvider = (*LocalTokenProvider)(nil)

// LocalTokenProvider signs session access tokens with a shared HS256 key.
// Tokens carry the subject only; they cannot be revoked before expiry
// except by rotating the key.
type LocalTokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewLocalTokenProvider creates a new local token provider
func NewLocalTokenProvider(secret, issuer string, ttl time.Duration) *LocalTokenProvider {
	return &LocalTokenProvider{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken issues a signed token for subject.
func (p *LocalTokenProvider) GenerateAccessToken(
	_ context.Context,
	subject string,
) (*core.TokenResult, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrTokenGeneration)
	}

	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    p.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &core.TokenResult{
		TokenString: signed,
		TokenType:   bearerType,
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateAccessToken verifies signature, issuer and expiry and returns the subject.
func (p *LocalTokenProvider) ValidateAccessToken(
	_ context.Context,
	tokenString string,
) (*core.TokenValidationResult, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &core.TokenValidationResult{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Name returns provider name for logging
func (p *LocalTokenProvider) Name() string {
	return "local"
}
