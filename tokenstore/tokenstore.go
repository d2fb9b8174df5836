// Package tokenstore keeps the access and refresh tokens mirrored across two
// persistence layers: a cookie layer visible to the routing layer, and a
// persistent local layer visible only to the client.
package tokenstore

import (
	"errors"
	"time"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Storage keys, shared by the cookie and local layers.
const (
	AccessTokenKey  = "authToken"
	RefreshTokenKey = "refreshToken"
)

// TokenStore mirrors tokens into a cookie Backend and a local Backend. Either
// backend may be nil; a TokenStore with no backends is the non-browser context
// and every operation on it is a no-op.
type TokenStore struct {
	cookies Backend
	local   Backend
	policy  Policy
	logger  zerolog.Logger
}

// Option configures a TokenStore.
type Option func(*TokenStore)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(s *TokenStore) {
		s.policy = p
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *TokenStore) {
		s.logger = l
	}
}

func New(cookies, local Backend, opts ...Option) *TokenStore {
	s := &TokenStore{
		cookies: cookies,
		local:   local,
		policy:  DefaultPolicy(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether there is any layer to persist into.
func (s *TokenStore) Available() bool {
	return s != nil && (s.cookies != nil || s.local != nil)
}

// Local exposes the local layer for components that persist other keys next to the tokens.
func (s *TokenStore) Local() Backend {
	if s == nil {
		return nil
	}
	return s.local
}

// Policy returns the expiry table in use.
func (s *TokenStore) Policy() Policy {
	return s.policy
}

// WriteAccessToken stores a token received from the login flow; the cookie
// carries the server supplied expiry, the local copy has none.
func (s *TokenStore) WriteAccessToken(accessToken string, expiresIn time.Duration) error {
	return s.writeAccess(accessToken, SourceLogin, expiresIn)
}

// SetAccessToken stores a token written outside the login flow, with the
// policy's lifetime for src.
func (s *TokenStore) SetAccessToken(accessToken string, src Source) error {
	return s.writeAccess(accessToken, src, 0)
}

func (s *TokenStore) writeAccess(accessToken string, src Source, expiresIn time.Duration) error {
	if !s.Available() {
		return nil
	}
	ttl := s.policy.AccessTTL(src, accessToken, expiresIn)
	if ttl <= 0 {
		return apperrors.Wrapf(apperrors.ErrTokenExpired, "[TokenStore writeAccess] %s token already expired", src)
	}
	s.logger.Debug().Str("source", src.String()).Dur("ttl", ttl).Msg("Writing access token")
	return s.write(AccessTokenKey, accessToken, ttl)
}

// WriteRefreshToken stores the refresh token; the cookie lives for the policy's RefreshTTL.
func (s *TokenStore) WriteRefreshToken(refreshToken string) error {
	if !s.Available() {
		return nil
	}
	return s.write(RefreshTokenKey, refreshToken, s.policy.RefreshTTL)
}

func (s *TokenStore) write(key, value string, ttl time.Duration) error {
	var errs []error
	if s.cookies != nil {
		errs = append(errs, s.cookies.Set(key, value, ttl))
	}
	if s.local != nil {
		errs = append(errs, s.local.Set(key, value, 0))
	}
	return errors.Join(errs...)
}

// ReadAccessToken prefers the cookie, the copy the routing layer acts on.
func (s *TokenStore) ReadAccessToken() (string, bool) {
	if v, ok := s.CookieAccessToken(); ok {
		return v, true
	}
	return s.LocalAccessToken()
}

// CookieAccessToken reads only the cookie layer.
func (s *TokenStore) CookieAccessToken() (string, bool) {
	return get(s.cookieBackend(), AccessTokenKey)
}

// LocalAccessToken reads only the local layer.
func (s *TokenStore) LocalAccessToken() (string, bool) {
	return get(s.localBackend(), AccessTokenKey)
}

// ReadRefreshToken prefers the cookie, like ReadAccessToken.
func (s *TokenStore) ReadRefreshToken() (string, bool) {
	if v, ok := get(s.cookieBackend(), RefreshTokenKey); ok {
		return v, true
	}
	return s.LocalRefreshToken()
}

// LocalRefreshToken reads only the local layer.
func (s *TokenStore) LocalRefreshToken() (string, bool) {
	return get(s.localBackend(), RefreshTokenKey)
}

// Sync brings the two layers back into agreement for the access token:
// a token only in the local layer is written to the cookie with the repair
// lifetime, and a token only in the cookie is copied to the local layer.
// It reports whether anything was written.
func (s *TokenStore) Sync() (bool, error) {
	if s == nil || s.cookies == nil || s.local == nil {
		return false, nil
	}

	cookieToken, inCookie := s.CookieAccessToken()
	localToken, inLocal := s.LocalAccessToken()

	switch {
	case inLocal && !inCookie:
		ttl := s.policy.AccessTTL(SourceRepair, localToken, 0)
		if ttl <= 0 {
			return false, apperrors.Wrapf(apperrors.ErrTokenExpired, "[TokenStore Sync] local access token already expired")
		}
		s.logger.Info().Dur("ttl", ttl).Msg("Repairing access token cookie from local store")
		return true, s.cookies.Set(AccessTokenKey, localToken, ttl)
	case inCookie && !inLocal:
		s.logger.Info().Msg("Copying access token cookie into local store")
		return true, s.local.Set(AccessTokenKey, cookieToken, 0)
	}
	return false, nil
}

// Clear removes both tokens from both layers. Cookies are expired, local entries deleted.
func (s *TokenStore) Clear() error {
	if !s.Available() {
		return nil
	}
	var errs []error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if s.cookies != nil {
			errs = append(errs, s.cookies.Delete(key))
		}
		if s.local != nil {
			errs = append(errs, s.local.Delete(key))
		}
	}
	return errors.Join(errs...)
}

func (s *TokenStore) cookieBackend() Backend {
	if s == nil {
		return nil
	}
	return s.cookies
}

func (s *TokenStore) localBackend() Backend {
	if s == nil {
		return nil
	}
	return s.local
}

func get(b Backend, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.Get(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
