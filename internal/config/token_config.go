package config

import "time"

// TokenConfig holds the fallback lifetimes used when writing token cookies.
// The server supplied expiry always takes precedence when it is known.
type TokenConfig interface {
	GetRefreshTokenTTL() time.Duration
	GetManualTokenTTL() time.Duration
	GetRepairTokenTTL() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetRefreshTokenTTL() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

// GetManualTokenTTL applies to tokens set outside the login flow.
func (Tokens) GetManualTokenTTL() time.Duration {
	return 24 * time.Hour
}

// GetRepairTokenTTL applies when restoration copies a locally stored token back into the cookie.
func (Tokens) GetRepairTokenTTL() time.Duration {
	return 7 * 24 * time.Hour
}
