package authapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry inspects an access token and, when it is a JWT carrying an
// exp claim, returns that expiry. The signature is NOT verified — a
// client holds no key material to verify with — so the result is advisory
// only: the session window enforced by the expiry monitor remains
// authoritative. Returns false for opaque tokens and JWTs without exp.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
