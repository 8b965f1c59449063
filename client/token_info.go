package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a cached access token.
// The claims are decoded without signature verification: the token is the
// client's own credential and is only inspected for diagnostics.
type TokenInfo struct {
	Type      string    // Token type, e.g. "Bearer"
	Subject   string    // JWT "sub" claim
	ClientID  string    // JWT "azp" claim
	Audience  []string  // JWT "aud" claim
	Scopes    []string  // Granted scopes
	ExpiresAt time.Time // Zero when the token carries no "exp"
}

// HasScope checks if token has a specific permission
func (t *TokenInfo) HasScope(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ExpiresIn returns the time left before expiry relative to now.
func (t *TokenInfo) ExpiresIn(now time.Time) time.Duration {
	if t.ExpiresAt.IsZero() {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}

// InspectToken decodes a formatted access token ("{type} {token}").
// Opaque (non-JWT) tokens return ErrOpaqueToken.
func InspectToken(formatted string) (*TokenInfo, error) {
	tokenType, raw, ok := strings.Cut(strings.TrimSpace(formatted), " ")
	if !ok {
		raw = tokenType
		tokenType = ""
	}
	if raw == "" {
		return nil, &ValidationError{Field: "token", Message: "cannot be empty"}
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, fmt.Errorf("decode token claims: %w", err)
	}

	info := &TokenInfo{
		Type:     tokenType,
		Subject:  claims.Subject,
		ClientID: claims.AuthorizedParty,
		Audience: claims.Audience,
		Scopes:   claims.GetScopes(),
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
