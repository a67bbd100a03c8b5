// Package testhelpers provides utilities for testing mls-app-ng components.
package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestJWT creates a session token shaped like the ones the Knora API
// issues: subject is the user IRI, expiry is optional (zero means none).
// The signing key is fixed; the client never verifies Knora tokens.
func GenerateTestJWT(sub string, expiresAt time.Time) string {
	claims := jwt.RegisteredClaims{
		Issuer:   "0.0.0.0:3333",
		Subject:  sub,
		Audience: jwt.ClaimStrings{"Knora", "Sipi"},
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}
