package tokenstore

import (
	"net/http"
	"time"
)

var _ Backend = (*HTTPCookies)(nil)

// HTTPCookies is the cookie backend for server handlers: reads come from the
// incoming request, writes go out as Set-Cookie headers on the response.
// Writes made during the request are visible to later reads.
type HTTPCookies struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	written map[string]*http.Cookie
}

func NewHTTPCookies(w http.ResponseWriter, r *http.Request, secure bool) *HTTPCookies {
	return &HTTPCookies{
		w:       w,
		r:       r,
		secure:  secure,
		written: make(map[string]*http.Cookie),
	}
}

func (hc *HTTPCookies) Get(name string) (string, bool) {
	if c, ok := hc.written[name]; ok {
		if c.MaxAge < 0 || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
	c, err := hc.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (hc *HTTPCookies) Set(name, value string, maxAge time.Duration) error {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   hc.secure,
		SameSite: http.SameSiteStrictMode,
	}
	if secs := int(maxAge / time.Second); secs > 0 {
		c.MaxAge = secs
	}
	hc.written[name] = c
	http.SetCookie(hc.w, c)
	return nil
}

func (hc *HTTPCookies) Delete(name string) error {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  epoch,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   hc.secure,
		SameSite: http.SameSiteStrictMode,
	}
	hc.written[name] = c
	http.SetCookie(hc.w, c)
	return nil
}
