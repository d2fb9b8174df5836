package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiryOf returns the exp claim of a JWT without verifying its signature.
// Opaque tokens and JWTs without exp report false.
func ExpiryOf(rawToken string) (time.Time, bool) {
	if strings.Count(rawToken, ".") != 2 {
		return time.Time{}, false
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// RemainingLifetime returns how long a JWT access token stays valid. A token
// that already expired reports (0, true); an opaque token reports (0, false).
func RemainingLifetime(rawToken string) (time.Duration, bool) {
	exp, ok := ExpiryOf(rawToken)
	if !ok {
		return 0, false
	}
	remaining := exp.Sub(NowTimeFunc())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
