// Package token decodes bearer access tokens issued by the Copracess
// backend without verifying their signature. Verification is the
// backend's job on every request it serves; the claims extracted here
// only drive client-side behaviour such as refreshing a token slightly
// before it expires, and must never be used as an authorization check.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultSkew is the safety buffer applied when checking expiry. A
// token within DefaultSkew of its expiry is treated as already expired
// so it gets renewed before the backend starts rejecting it.
const DefaultSkew = 60 * time.Second

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims holds the subset of token claims the mobile client cares about.
type Claims struct {
	ID             string
	Email          string
	Name           string
	Role           string
	OrganizationID string
	ExpiresAt      time.Time // zero when the token carries no exp claim
}

var parser = jwtlib.NewParser()

// Decode extracts the claims from a raw bearer token without verifying
// its signature. It returns nil on any malformed input (missing
// segment, bad encoding, invalid payload) and never panics.
func Decode(raw string) *Claims {
	claims := jwtlib.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}

	c := &Claims{
		ID:             stringClaim(claims, "id"),
		Email:          stringClaim(claims, "email"),
		Name:           stringClaim(claims, "name"),
		Role:           stringClaim(claims, "role"),
		OrganizationID: stringClaim(claims, "organizationId"),
	}
	if c.ID == "" {
		c.ID = stringClaim(claims, "sub")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}

// IsExpired reports whether raw expires at or before now+skew. Tokens
// that cannot be decoded, or that carry no expiry claim, are treated as
// expired (fail closed).
func IsExpired(raw string, skew time.Duration) bool {
	c := Decode(raw)
	if c == nil || c.ExpiresAt.IsZero() {
		return true
	}
	return c.ExpiresAt.UnixMilli() <= NowTimeFunc().Add(skew).UnixMilli()
}

func stringClaim(claims jwtlib.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
