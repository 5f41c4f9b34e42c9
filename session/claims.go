package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is display-only information read from a JWT shaped credential.
// Nothing here is verified; expiry is still discovered through 401 responses.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PeekClaims decodes the credential without verifying its signature. ok is
// false for opaque (non JWT) credentials.
func PeekClaims(credential string) (claims Claims, ok bool) {
	var mc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &mc); err != nil {
		return Claims{}, false
	}
	claims.Subject = mc.Subject
	if mc.IssuedAt != nil {
		claims.IssuedAt = mc.IssuedAt.Time
	}
	if mc.ExpiresAt != nil {
		claims.ExpiresAt = mc.ExpiresAt.Time
	}
	return claims, true
}
