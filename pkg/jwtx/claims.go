// Package jwtx holds the access-token claims and the EdDSA signer/verifier
// pair used to authenticate API callers. Tokens are minted by the identity
// provider that fronts the mobile app; this service only verifies them.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default access-token lifetime, used by the
// signer when minting tokens for tests and tooling.
const DefaultAccessTokenTTL = 15 * time.Minute

// Claims are the access-token claims this service understands. Keep changes
// additive so older tokens keep verifying.
type Claims struct {
	jwt.RegisteredClaims

	// DisplayName is the user's display name, carried for logging only. The
	// authoritative name lives on the profile record.
	DisplayName string `json:"display_name,omitempty"`
}

// NewUserClaims builds minimally-correct claims for a user token.
func NewUserClaims(subject, displayName, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		DisplayName: displayName,
	}
}

// ValidateExpiry ensures the token is inside its exp/nbf window.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateIssuer checks the issuer claim when an expected value is enforced.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}
