package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types as issued by the Directory
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrMalformedToken is returned when a token cannot be decoded
var ErrMalformedToken = errors.New("malformed token")

// Claims is the decoded payload of an access or refresh token
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
}

// ExpiresAtTime returns the exp claim, or the zero time when absent
func (c *Claims) ExpiresAtTime() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAtTime returns the iat claim, or the zero time when absent
func (c *Claims) IssuedAtTime() time.Time {
	if c == nil || c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ParseClaims decodes the payload of a JWT without verifying its signature.
// The token must carry an exp claim.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	return claims, nil
}

// ExpiresAt is a shorthand for ParseClaims(token).ExpiresAtTime()
func ExpiresAt(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAtTime(), nil
}
