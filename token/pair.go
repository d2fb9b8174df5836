package token

import (
	"time"

	"golang.org/x/oauth2"
)

// Pair is the token material returned by the auth API on login and refresh.
type Pair struct {
	// AccessToken is the short-lived bearer credential.
	AccessToken string `json:"accessToken"`

	// RefreshToken is the longer-lived credential used to obtain a new access token.
	RefreshToken string `json:"refreshToken"`

	// ExpiresIn is the access token lifetime in seconds, as decided by the server.
	ExpiresIn int `json:"expiresIn"`
}

// Lifetime returns ExpiresIn as a duration.
func (p Pair) Lifetime() time.Duration {
	return time.Duration(p.ExpiresIn) * time.Second
}

// OAuth2 converts the pair into an oauth2.Token anchored at now.
func (p Pair) OAuth2(now time.Time) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if p.ExpiresIn > 0 {
		t.Expiry = now.Add(p.Lifetime())
	}
	return t
}

// FromOAuth2 converts an oauth2.Token back into a Pair. A zero expiry yields ExpiresIn 0.
func FromOAuth2(t *oauth2.Token, now time.Time) Pair {
	if t == nil {
		return Pair{}
	}
	p := Pair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
	if !t.Expiry.IsZero() {
		if secs := int(t.Expiry.Sub(now).Seconds()); secs > 0 {
			p.ExpiresIn = secs
		}
	}
	return p
}
