package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	_ Backend        = (*CookieStore)(nil)
	_ http.CookieJar = (*CookieStore)(nil)
)

// CookieStore is the cookie layer of a client: a single-origin cookie jar that
// the routing layer (the dashboard server) sees on every request. It satisfies
// both Backend and http.CookieJar, so an http.Client using it as its Jar sends
// the same cookies the TokenStore writes.
//
// Cleared cookies are kept with an epoch expiry so callers can inspect them,
// but they are never returned by Get or Cookies.
type CookieStore struct {
	mu      sync.RWMutex
	origin  *url.URL
	cookies map[string]*http.Cookie // name -> cookie with an absolute Expires
	file    string                  // optional persistence path
	secure  bool
	nowTime func() time.Time
	logger  zerolog.Logger
}

// CookieOption configures a CookieStore.
type CookieOption func(*CookieStore)

// WithCookieFile persists the jar to path after every change and loads it on creation.
func WithCookieFile(path string) CookieOption {
	return func(cs *CookieStore) {
		cs.file = path
	}
}

// WithCookieNowTime sets the clock (primarily for testing).
func WithCookieNowTime(nowFunc func() time.Time) CookieOption {
	return func(cs *CookieStore) {
		cs.nowTime = nowFunc
	}
}

// WithCookieLogger sets the logger used for persistence failures that have no caller to return to.
func WithCookieLogger(l zerolog.Logger) CookieOption {
	return func(cs *CookieStore) {
		cs.logger = l
	}
}

// WithSecureCookies marks written cookies Secure.
func WithSecureCookies(secure bool) CookieOption {
	return func(cs *CookieStore) {
		cs.secure = secure
	}
}

// NewCookieStore creates a jar scoped to origin (scheme + host).
func NewCookieStore(origin *url.URL, opts ...CookieOption) (*CookieStore, error) {
	if origin == nil || origin.Host == "" {
		return nil, errors.New("[CookieStore New] origin with host is required")
	}
	cs := &CookieStore{
		origin:  &url.URL{Scheme: origin.Scheme, Host: origin.Host},
		cookies: make(map[string]*http.Cookie),
		nowTime: time.Now,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(cs)
	}
	if err := cs.load(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Origin returns the URL the jar is scoped to.
func (cs *CookieStore) Origin() *url.URL {
	u := *cs.origin
	return &u
}

// Get returns the value of a live cookie.
func (cs *CookieStore) Get(name string) (string, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	c, ok := cs.cookies[name]
	if !ok || cs.expired(c) {
		return "", false
	}
	return c.Value, true
}

// Set writes a path "/" SameSite=Strict cookie. maxAge is rounded down to whole seconds.
func (cs *CookieStore) Set(name, value string, maxAge time.Duration) error {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   cs.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if secs := int(maxAge / time.Second); secs > 0 {
		c.MaxAge = secs
		c.Expires = cs.nowTime().Add(time.Duration(secs) * time.Second).UTC()
	}

	cs.mu.Lock()
	cs.cookies[name] = c
	cs.mu.Unlock()
	return cs.save()
}

// Delete expires the cookie by re-setting it with an epoch expiry.
func (cs *CookieStore) Delete(name string) error {
	cs.mu.Lock()
	cs.cookies[name] = &http.Cookie{
		Name:     name,
		Path:     "/",
		Expires:  epoch,
		SameSite: http.SameSiteStrictMode,
	}
	cs.mu.Unlock()
	return cs.save()
}

// Cookie returns the stored cookie including expired ones, for inspection.
func (cs *CookieStore) Cookie(name string) (*http.Cookie, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	c, ok := cs.cookies[name]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Expired reports whether the named cookie exists only as an expired record.
func (cs *CookieStore) Expired(name string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	c, ok := cs.cookies[name]
	return ok && cs.expired(c)
}

// SetCookies implements http.CookieJar for responses from the jar's origin.
func (cs *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if !cs.sameOrigin(u) || len(cookies) == 0 {
		return
	}

	cs.mu.Lock()
	now := cs.nowTime()
	for _, in := range cookies {
		c := *in
		if c.Path == "" {
			c.Path = "/"
		}
		switch {
		case c.MaxAge < 0:
			c.Expires = epoch
		case c.MaxAge > 0:
			c.Expires = now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
		}
		cs.cookies[c.Name] = &c
	}
	cs.mu.Unlock()

	if err := cs.save(); err != nil {
		cs.logger.Err(err).Str("file", cs.file).Msg("Failed to persist cookie jar")
	}
}

// Cookies implements http.CookieJar. Only live cookies for the jar's origin are sent.
func (cs *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	if !cs.sameOrigin(u) {
		return nil
	}

	cs.mu.RLock()
	defer cs.mu.RUnlock()

	names := make([]string, 0, len(cs.cookies))
	for name := range cs.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*http.Cookie
	for _, name := range names {
		c := cs.cookies[name]
		if cs.expired(c) || !strings.HasPrefix(u.Path+"/", strings.TrimSuffix(c.Path, "/")+"/") {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func (cs *CookieStore) expired(c *http.Cookie) bool {
	if c.Expires.IsZero() {
		return false
	}
	return !cs.nowTime().Before(c.Expires)
}

func (cs *CookieStore) sameOrigin(u *url.URL) bool {
	return u != nil && strings.EqualFold(u.Host, cs.origin.Host)
}

func (cs *CookieStore) load() error {
	if cs.file == "" {
		return nil
	}
	data, err := os.ReadFile(cs.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[CookieStore load] read %s: %w", cs.file, err)
	}

	var stored map[string]*http.Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("[CookieStore load] decode %s: %w", cs.file, err)
	}
	for name, c := range stored {
		if c != nil {
			cs.cookies[name] = c
		}
	}
	return nil
}

func (cs *CookieStore) save() error {
	if cs.file == "" {
		return nil
	}

	cs.mu.RLock()
	data, err := json.MarshalIndent(cs.cookies, "", "  ")
	cs.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("[CookieStore save] encode: %w", err)
	}
	return writeFileAtomic(cs.file, data, 0o600)
}
