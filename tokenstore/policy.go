package tokenstore

import (
	"time"

	"github.com/jrsteele09/tripsync-admin/internal/config"
	"github.com/jrsteele09/tripsync-admin/token"
)

// Source identifies which flow is writing an access token cookie.
type Source int

const (
	// SourceLogin is a login or refresh response carrying the server's expiresIn.
	SourceLogin Source = iota
	// SourceManual is a token set outside the login flow.
	SourceManual
	// SourceRepair is restoration copying a locally stored token back into the cookie.
	SourceRepair
)

func (s Source) String() string {
	switch s {
	case SourceLogin:
		return "login"
	case SourceManual:
		return "manual"
	case SourceRepair:
		return "repair"
	}
	return "unknown"
}

// Policy is the single table of cookie lifetimes.
//
// The server's expiry is canonical: at login it arrives as expiresIn, elsewhere it
// is read from the token's own exp claim when the token is a JWT. Only when
// neither is known does the per-source fallback apply.
type Policy struct {
	RefreshTTL time.Duration
	Fallback   map[Source]time.Duration
}

// DefaultPolicy matches the dashboard's historical lifetimes.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Tokens{})
}

func PolicyFromConfig(c config.TokenConfig) Policy {
	return Policy{
		RefreshTTL: c.GetRefreshTokenTTL(),
		Fallback: map[Source]time.Duration{
			SourceLogin:  c.GetManualTokenTTL(),
			SourceManual: c.GetManualTokenTTL(),
			SourceRepair: c.GetRepairTokenTTL(),
		},
	}
}

// AccessTTL resolves the cookie max-age for accessToken written by src. A JWT
// whose exp has passed resolves to 0: it must not be written at all.
func (p Policy) AccessTTL(src Source, accessToken string, serverExpiresIn time.Duration) time.Duration {
	if src == SourceLogin && serverExpiresIn > 0 {
		return serverExpiresIn
	}
	if remaining, ok := token.RemainingLifetime(accessToken); ok {
		return remaining
	}
	return p.Fallback[src]
}
