// Command tripsync is the terminal client for the TripSync admin dashboard.
// It keeps its session in a cookie jar and a local store under DATA_FOLDER,
// so a login survives between runs the same way it does in a browser.
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/tripsync-admin/authapi"
	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	"github.com/jrsteele09/tripsync-admin/guard"
	"github.com/jrsteele09/tripsync-admin/internal/config"
	"github.com/jrsteele09/tripsync-admin/session"
	"github.com/jrsteele09/tripsync-admin/tokenstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: tripsync <command> [flags]

commands:
  login      sign in (--email, password from --password, $TRIPSYNC_PASSWORD or stdin)
  logout     sign out and forget the stored tokens
  whoami     show the signed in user
  refresh    exchange the refresh token for a new access token
  tours      list tours (--page, --size, --search)
    tours create --title T --start YYYY-MM-DD --end YYYY-MM-DD [--max N] [--status S] [--description D]
    tours update <id> [same flags as create]
    tours assign <id> --users id1,id2
    tours participants <id>
  users      list users (--page, --size, --search)
    users create --email E --password P --name N [--role R] [--phone P]
    users update <id> [same flags as create]
  locations  list locations (--page, --size, --search)
    locations create --name N [--type T] [--address A] [--category C] [--description D]
    locations update <id> [same flags as create]
  version    print the banner
`

// client is everything a command needs: the live session and the REST API.
type client struct {
	config    config.Config
	store     *session.Store
	restorer  *session.Restorer
	dashboard *dashboardapi.Client
	rules     guard.Rules
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
}

func main() {
	config.LoadDotEnv()
	c := config.New()

	level := zerolog.WarnLevel
	if os.Getenv("DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, c config.Config, command string, args []string) error {
	switch command {
	case "version":
		displayAppname(c.GetAppName())
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}

	cl, err := newClient(c)
	if err != nil {
		return err
	}
	return cl.exec(ctx, command, args)
}

// exec restores the session and runs a single command against it.
func (cl *client) exec(ctx context.Context, command string, args []string) error {
	defer cl.store.Wait()

	if outcome := cl.restorer.Init(ctx); outcome == session.OutcomeRejected {
		fmt.Fprintln(cl.errOut, "Your session has expired.")
	}

	switch command {
	case "login":
		return cl.login(ctx, args)
	case "logout":
		return cl.logout()
	case "whoami":
		return cl.protected(cl.whoami)
	case "refresh":
		return cl.refresh(ctx)
	case "tours", "users", "locations":
		return cl.protected(func() error { return cl.resource(ctx, command, args) })
	}
	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

func newClient(c config.Config) (*client, error) {
	origin, err := url.Parse(c.GetDashboardURL())
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_URL: %w", err)
	}
	if err := os.MkdirAll(c.GetDataFolder(), 0o700); err != nil {
		return nil, fmt.Errorf("create data folder: %w", err)
	}

	cookies, err := tokenstore.NewCookieStore(origin,
		tokenstore.WithCookieFile(config.CookieJarPath(c)),
		tokenstore.WithSecureCookies(c.GetSecureCookies()),
	)
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	local, err := tokenstore.NewLocalStore(
		tokenstore.WithLocalFile(config.LocalStorePath(c)),
		tokenstore.WithPassphrase(c.GetLocalStoreKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	tokens := tokenstore.New(cookies, local, tokenstore.WithPolicy(tokenstore.PolicyFromConfig(c)))
	api := authapi.New(c.GetAPIURL(), authapi.WithTimeout(c.GetAPITimeout()))
	store := session.NewStore(api, tokens, session.WithLogoutTimeout(c.GetAPITimeout()))

	return &client{
		config:   c,
		store:    store,
		restorer: session.NewRestorer(store),
		dashboard: dashboardapi.New(c.GetAPIURL(), store.TokenSource(),
			dashboardapi.WithTimeout(c.GetAPITimeout()),
			dashboardapi.WithUnauthorizedHandler(store.Logout),
		),
		rules:  guard.DefaultRules(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}, nil
}

// protected runs fn behind the session gate. A session that ends while fn
// runs sends the user to login as well.
func (cl *client) protected(fn func() error) error {
	gate := guard.NewGate(cl.store, guard.NavigatorFunc(func(path string) {
		fmt.Fprintf(cl.errOut, "Not signed in. Run `tripsync login` (%s).\n", path)
	}), cl.rules)
	gate.Start()
	defer gate.Stop()

	return gate.Render(cl.out, fn)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
