package creds

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"labmate-cli/internal/model"
)

// Fallback lifetimes for tokens whose exp claim is absent or unreadable.
// The backend decides the real expiry; these only bound how long a stale
// credential can linger on disk.
const (
	accessTokenFallbackTTL = 24 * time.Hour
	refreshTokenTTL        = 30 * 24 * time.Hour
)

// tokenTTL derives a storage TTL from the token's exp claim. The signature
// is never checked here: the client has no key material, and a forged exp
// only shortens or lengthens local retention, never grants access.
func tokenTTL(raw string, fallback time.Duration) time.Duration {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return fallback
	}
	return ttl
}

// SaveTokens persists a freshly issued token pair into the vault, with the
// access slot's TTL taken from the token itself when possible.
func (s *Store) SaveTokens(ctx context.Context, tok model.Token) error {
	if err := s.Set(ctx, SlotAccessToken, tok.AccessToken,
		tokenTTL(tok.AccessToken, accessTokenFallbackTTL)); err != nil {
		return err
	}
	if tok.RefreshToken == "" {
		return nil
	}
	return s.Set(ctx, SlotRefreshToken, tok.RefreshToken, refreshTokenTTL)
}

// AccessToken reads the current bearer token; expired reads as absent.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, SlotAccessToken)
}

// RefreshToken reads the stored refresh token; expired reads as absent.
func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, SlotRefreshToken)
}
