package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from a token without the signing key.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken decodes a JWT payload without verifying its signature. The
// backend remains the authority; this only serves display and the expiry
// short-circuit. Opaque tokens return ok == false.
func InspectToken(token string) (Claims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, false
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, true
}

// Expired reports whether the token carries an exp claim that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
