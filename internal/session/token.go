package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The backend issues JWTs but owns their verification; the gateway only
// peeks at the expiry claim so it can prune sessions that can no longer
// authenticate. Signatures are deliberately not checked here.

// TokenExpiry returns the expiry time embedded in a backend token. ok is
// false when the token is not a JWT or carries no expiry.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenExpired reports whether a token's embedded expiry has passed. Tokens
// without a readable expiry are kept: the backend is the authority and will
// reject them with a 401 if they are stale.
func TokenExpired(token string) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return time.Now().After(exp)
}
