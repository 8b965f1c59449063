package client

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of an access token issued by the token
// service.
type Claims struct {
	jwt.RegisteredClaims
	// Permissions (space-separated string from the OAuth provider)
	Scope string `json:"scope,omitempty"`
	// Authorized party; the client id for client-credentials tokens
	AuthorizedParty string `json:"azp,omitempty"`
}

// GetScopes parses the space-separated scope string into a slice
func (c *Claims) GetScopes() []string {
	if c.Scope == "" {
		return []string{}
	}
	return strings.Fields(c.Scope)
}
