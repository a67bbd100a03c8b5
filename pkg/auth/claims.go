// Package auth carries the Knora session token through request contexts and
// reads the claims of tokens issued by the Knora API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of a Knora session token.
// The subject is the IRI of the authenticated user.
type Claims struct {
	jwt.RegisteredClaims
}

// ParseUnverified decodes the claims of a token without checking its
// signature. The token is only ever sent back to the API that issued it, which
// does the verification; the client needs subject and expiry for display.
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the token expiry, nil when the token has none.
func (c *Claims) ExpiresAt() *time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return nil
	}
	t := c.RegisteredClaims.ExpiresAt.Time
	return &t
}
