package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/tokenstore"
	"github.com/jrsteele09/tripsync-admin/users"
	"golang.org/x/oauth2"
)

// requestTokens is a TokenStore over the request's cookies. The server has no
// local layer: that one lives only in the client.
func (s *Server) requestTokens(w http.ResponseWriter, r *http.Request) *tokenstore.TokenStore {
	secure := s.config.GetSecureCookies() || getScheme(r) == "https"
	return tokenstore.New(
		tokenstore.NewHTTPCookies(w, r, secure),
		nil,
		tokenstore.WithPolicy(s.policy),
		tokenstore.WithLogger(s.logger),
	)
}

// pageSession is the caller's identity for one protected page request.
type pageSession struct {
	user      *users.User
	dashboard *dashboardapi.Client
	expired   bool
}

// protectedSession validates the access-token cookie with the auth API and
// builds a REST client authorized with it. When there is no usable token the
// cookies are cleared, the response is a redirect to login and ok is false.
func (s *Server) protectedSession(w http.ResponseWriter, r *http.Request) (*pageSession, bool) {
	tokens := s.requestTokens(w, r)
	accessToken, found := tokens.CookieAccessToken()
	if !found {
		redirectSuccess(w, r, s.loginRedirectFor(r))
		return nil, false
	}

	user, err := s.auth.GetCurrentUser(r.Context(), accessToken)
	if err != nil {
		s.logger.Info().Err(err).Str("path", r.URL.Path).Msg("Access token rejected")
		if apperrors.Is(err, apperrors.ErrTokenRejected) {
			s.clearTokens(tokens)
		}
		redirectSuccess(w, r, s.loginRedirectFor(r))
		return nil, false
	}

	ps := &pageSession{user: user}
	ps.dashboard = dashboardapi.New(
		s.config.GetAPIURL(),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
		dashboardapi.WithTimeout(s.config.GetAPITimeout()),
		dashboardapi.WithLogger(s.logger),
		dashboardapi.WithUnauthorizedHandler(func() {
			ps.expired = true
			s.clearTokens(tokens)
		}),
	)
	return ps, true
}

func (s *Server) clearTokens(tokens *tokenstore.TokenStore) {
	if err := tokens.Clear(); err != nil {
		s.logger.Err(err).Msg("Failed to clear token cookies")
	}
}

// sessionExpired redirects to login when a REST call rejected the token.
func (s *Server) sessionExpired(w http.ResponseWriter, r *http.Request, ps *pageSession) bool {
	if !ps.expired {
		return false
	}
	redirectSuccess(w, r, s.loginRedirectFor(r))
	return true
}

// loginRedirectFor sends GET requests back to where they were going after
// login. Form posts have no page to return to.
func (s *Server) loginRedirectFor(r *http.Request) string {
	if r.Method != http.MethodGet {
		return s.rules.Login
	}
	return s.rules.LoginRedirect(r.URL.Path)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithNotice adds a one-line message for the target page to show.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	redirectSuccess(w, r, path+"?"+url.Values{key: {msg}}.Encode())
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
