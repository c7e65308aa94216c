package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// testSigningKey signs tokens minted for tests. The client never verifies it.
var testSigningKey = []byte("warden-test-signing-key")

// MintTestToken builds a signed JWT expiring at exp, the way the Directory shapes
// its tokens. Intended for tests across packages.
func MintTestToken(exp time.Time, tokenType string) string {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		panic("auth: failed to mint test token: " + err.Error())
	}
	return signed
}
