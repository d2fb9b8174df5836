package guard

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Action is what the guard does with a request.
type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome for one request. Status is set for redirects.
type Decision struct {
	Action   Action
	Location string
	Status   int
	Reason   string
}

// navigation reports whether method is a plain page load a browser can repeat.
func navigation(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func redirect(method, location, reason string) Decision {
	status := http.StatusTemporaryRedirect
	if !navigation(method) {
		status = http.StatusSeeOther
	}
	return Decision{Action: Redirect, Location: location, Status: status, Reason: reason}
}

// Decide applies the rules to a request. hasToken is the presence of the
// access-token cookie; nothing else about the session is visible here.
// Page loads are redirected with 307. Any other method gets a 303 so the
// browser follows with a GET, and no return path, since a form post cannot
// be replayed from the login page.
func (rules Rules) Decide(method, path string, query url.Values, hasToken bool) Decision {
	switch {
	case rules.IsExcluded(path):
		return Decision{Action: Allow, Reason: "excluded"}

	case path == RouteRoot:
		if hasToken {
			return redirect(method, rules.Home, "root")
		}
		return redirect(method, rules.Login, "root")

	case rules.IsProtected(path) && !hasToken:
		if !navigation(method) {
			return redirect(method, rules.Login, "no token")
		}
		return redirect(method, rules.LoginRedirect(path), "no token")

	case path == rules.Login && hasToken:
		if target, ok := rules.SafeRedirect(query.Get(RedirectParam)); ok {
			return redirect(method, target, "already signed in")
		}
		return redirect(method, rules.Home, "already signed in")

	case rules.IsPublic(path):
		return Decision{Action: Allow, Reason: "public"}
	}
	return Decision{Action: Allow}
}

// HasToken reports whether r carries a non-empty access-token cookie.
func (rules Rules) HasToken(r *http.Request) bool {
	c, err := r.Cookie(rules.TokenCookie)
	return err == nil && c.Value != ""
}

// Middleware intercepts every request before it reaches a handler.
func Middleware(rules Rules, opts ...Option) func(http.Handler) http.Handler {
	cfg := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := rules.Decide(r.Method, r.URL.Path, r.URL.Query(), rules.HasToken(r))
			if decision.Action == Redirect {
				cfg.logger.Debug().
					Str("path", r.URL.Path).
					Str("location", decision.Location).
					Str("reason", decision.Reason).
					Msg("Guard redirect")
				http.Redirect(w, r, decision.Location, decision.Status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type options struct {
	logger zerolog.Logger
}

// Option configures the middleware.
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
