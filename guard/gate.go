package guard

import (
	"fmt"
	"io"
	"sync"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/session"
)

// GateState is the render decision for a protected view.
type GateState int

const (
	GateChecking GateState = iota
	GateAuthenticated
	GateUnauthenticated
)

func (g GateState) String() string {
	switch g {
	case GateChecking:
		return "checking"
	case GateAuthenticated:
		return "authenticated"
	case GateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Evaluate maps a session snapshot onto a gate state. Loading wins over everything.
func Evaluate(st session.State) GateState {
	switch {
	case st.IsLoading:
		return GateChecking
	case st.IsAuthenticated:
		return GateAuthenticated
	}
	return GateUnauthenticated
}

// SessionSource is the read side of session.Store.
type SessionSource interface {
	State() session.State
	Subscribe(fn session.Listener) (unsubscribe func())
}

// Navigator performs the client side navigation to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type gateKey struct {
	authenticated bool
	loading       bool
}

// Gate guards rendering of protected views with the live session. It watches
// {IsAuthenticated, IsLoading} and navigates to the login route exactly when
// that pair changes to loading finished and not authenticated.
type Gate struct {
	source    SessionSource
	nav       Navigator
	loginPath string

	mu          sync.Mutex
	last        *gateKey
	unsubscribe func()
}

func NewGate(source SessionSource, nav Navigator, rules Rules) *Gate {
	return &Gate{
		source:    source,
		nav:       nav,
		loginPath: rules.Login,
	}
}

// Start evaluates the current session, then follows every change until Stop.
func (g *Gate) Start() {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	unsubscribe := g.source.Subscribe(g.observe)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	g.observe(g.source.State())
}

func (g *Gate) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.last = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *Gate) observe(st session.State) {
	key := gateKey{authenticated: st.IsAuthenticated, loading: st.IsLoading}

	g.mu.Lock()
	changed := g.last == nil || *g.last != key
	g.last = &key
	g.mu.Unlock()

	if changed && !key.loading && !key.authenticated {
		g.nav.Navigate(g.loginPath)
	}
}

// State is the gate's current render decision.
func (g *Gate) State() GateState {
	return Evaluate(g.source.State())
}

// Render writes a loading or redirecting indicator, or runs children when the
// session is authenticated. It returns ErrNotAuthenticated when redirecting.
func (g *Gate) Render(w io.Writer, children func() error) error {
	switch g.State() {
	case GateChecking:
		fmt.Fprintln(w, "Loading...")
		return nil
	case GateUnauthenticated:
		fmt.Fprintln(w, "Redirecting to login...")
		return apperrors.ErrNotAuthenticated
	}
	return children()
}
