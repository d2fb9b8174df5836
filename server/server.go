// Package server is the dashboard HTTP server. Every request passes the route
// guard first; pages that need data call the REST API with the caller's
// access-token cookie.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/tripsync-admin/authapi"
	"github.com/jrsteele09/tripsync-admin/guard"
	"github.com/jrsteele09/tripsync-admin/internal/config"
	"github.com/jrsteele09/tripsync-admin/tokenstore"
	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// AuthAPI is the part of the auth service the server calls on behalf of a browser.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*users.User, error)
}

type Server struct {
	env    string
	router chi.Router
	routes []string
	config config.Config
	auth   AuthAPI
	rules  guard.Rules
	policy tokenstore.Policy
	logger zerolog.Logger
	pages  map[string]*template.Template

	// background tracks server side logouts that outlive their request.
	background    sync.WaitGroup
	logoutTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithRules(rules guard.Rules) Option {
	return func(s *Server) {
		s.rules = rules
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func New(c config.Config, auth AuthAPI, opts ...Option) (*Server, error) {
	s := &Server{
		env:           c.GetEnv(),
		router:        chi.NewRouter(),
		config:        c,
		auth:          auth,
		rules:         guard.DefaultRules(),
		policy:        tokenstore.PolicyFromConfig(c),
		logger:        log.Logger,
		logoutTimeout: c.GetAPITimeout(),
	}
	for _, opt := range opts {
		opt(s)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.pages = pages

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until background logouts started by requests have finished.
func (s *Server) Wait() {
	s.background.Wait()
}

func (s *Server) registerRoute(method, pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.Method(method, pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		var method, path string
		if _, err := fmt.Sscanf(route, "%s %s", &method, &path); err != nil {
			continue
		}
		s.logger.Debug().Msg(colourRoute(method, path))
	}
}

func colourRoute(method, path string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	return fmt.Sprintf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
