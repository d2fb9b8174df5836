// Package guard decides who may see which dashboard route. Middleware applies
// the rules to every incoming request using only the access-token cookie;
// Gate applies them to rendering using the live session.
package guard

import (
	"net/url"
	"slices"
	"strings"

	"github.com/jrsteele09/tripsync-admin/tokenstore"
)

// Route paths the rules refer to.
const (
	RouteRoot           = "/"
	RouteLogin          = "/login"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteDashboard      = "/dashboard"
	RouteTours          = "/tours"
	RouteUsers          = "/users"
	RouteLocations      = "/locations"
	RouteAnalytics      = "/analytics"
	RouteSettings       = "/settings"
	RouteAPI            = "/api"

	// RedirectParam carries the original destination through the login page.
	RedirectParam = "redirect"
)

// Rules is the closed route classification the guard acts on.
type Rules struct {
	// Protected prefixes require the access-token cookie. Matching is a plain
	// string prefix: "/tours" covers "/tours/42" and "/toursx" alike.
	Protected []string
	// Public routes never require a token. Matching is exact.
	Public []string
	// Excluded prefixes bypass the guard entirely (static assets and the like).
	Excluded []string

	Login       string
	Home        string
	TokenCookie string
}

func DefaultRules() Rules {
	return Rules{
		Protected: []string{RouteDashboard, RouteTours, RouteUsers, RouteAnalytics, RouteSettings, RouteAPI},
		Public:    []string{RouteLogin, RouteForgotPassword, RouteResetPassword},
		Excluded: []string{
			"/static/",
			"/_next/static",
			"/_next/image",
			"/favicon.ico",
			"/public/",
		},
		Login:       RouteLogin,
		Home:        RouteDashboard,
		TokenCookie: tokenstore.AccessTokenKey,
	}
}

func (rules Rules) IsProtected(path string) bool {
	for _, p := range rules.Protected {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (rules Rules) IsPublic(path string) bool {
	return slices.Contains(rules.Public, path)
}

func (rules Rules) IsExcluded(path string) bool {
	for _, p := range rules.Excluded {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// SafeRedirect returns target when it is a same-site protected path, the only
// destinations the login flow may send a user back to.
func (rules Rules) SafeRedirect(target string) (string, bool) {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if !rules.IsProtected(u.Path) {
		return "", false
	}
	return u.RequestURI(), true
}

// LoginRedirect is the login URL that returns the user to path after signing in.
func (rules Rules) LoginRedirect(path string) string {
	return rules.Login + "?" + url.Values{RedirectParam: {path}}.Encode()
}
