// Package session holds the client's single authoritative session record and
// the startup procedure that restores it from persisted token material.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/tripsync-admin/authapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/tokenstore"
	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the subset of the auth service the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*authapi.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*users.User, error)
}

var _ AuthAPI = (*authapi.Client)(nil)

// State is a snapshot of the session. Token is empty when there is no token.
type State struct {
	User            *users.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// Listener is notified with the new state after every change.
type Listener func(State)

const defaultLogoutTimeout = 10 * time.Second

// Store is the session authority. Any component may read State or Subscribe;
// only the methods below mutate it. Every change is persisted to the local
// layer of the TokenStore so that a restart can attempt restoration.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int

	api    AuthAPI
	tokens *tokenstore.TokenStore

	// loginMu serializes overlapping Login calls; the last to finish wins.
	loginMu sync.Mutex

	background    sync.WaitGroup
	logoutTimeout time.Duration
	logger        zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithLogoutTimeout bounds the background server logout call.
func WithLogoutTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.logoutTimeout = d
	}
}

// NewStore creates the store and rehydrates it from the persisted snapshot, if any.
func NewStore(api AuthAPI, tokens *tokenstore.TokenStore, opts ...Option) *Store {
	s := &Store{
		listeners:     make(map[int]Listener),
		api:           api,
		tokens:        tokens,
		logoutTimeout: defaultLogoutTimeout,
		logger:        log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rehydrate()
	return s
}

// State returns a copy of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Login authenticates with the auth API. On success both tokens are written to
// both persistence layers and the session becomes authenticated. On failure
// the error message is recorded and the error is returned to the caller.
func (s *Store) Login(ctx context.Context, creds authapi.Credentials) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})

	resp, err := s.api.Login(ctx, creds.Email, creds.Password)
	if err == nil && (resp == nil || resp.User == nil || resp.Tokens.AccessToken == "") {
		err = apperrors.Wrapf(apperrors.ErrInvalidCredentials, "[Store Login] incomplete login response")
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Login failed"
		}
		s.update(func(st *State) {
			st.IsLoading = false
			st.Error = msg
		})
		return err
	}

	s.persistPair(resp)

	s.update(func(st *State) {
		st.User = resp.User.Clone()
		st.Token = resp.Tokens.AccessToken
		st.IsAuthenticated = true
		st.IsLoading = false
		st.Error = ""
	})
	s.logger.Info().Str("user_id", resp.User.ID).Msg("Logged in")
	return nil
}

// Refresh exchanges the stored refresh token for a new token pair.
func (s *Store) Refresh(ctx context.Context) error {
	refreshToken, ok := s.tokens.ReadRefreshToken()
	if !ok {
		return apperrors.ErrNoRefreshToken
	}

	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return apperrors.Wrapf(err, "[Store Refresh] refresh failed")
	}
	if resp == nil || resp.User == nil || resp.Tokens.AccessToken == "" {
		return apperrors.Wrapf(apperrors.ErrTokenRejected, "[Store Refresh] incomplete refresh response")
	}

	s.persistPair(resp)

	s.update(func(st *State) {
		st.User = resp.User.Clone()
		st.Token = resp.Tokens.AccessToken
		st.IsAuthenticated = true
	})
	return nil
}

func (s *Store) persistPair(resp *authapi.AuthResponse) {
	if err := s.tokens.WriteAccessToken(resp.Tokens.AccessToken, resp.Tokens.Lifetime()); err != nil {
		s.logger.Err(err).Msg("Failed to persist access token")
	}
	if resp.Tokens.RefreshToken == "" {
		return
	}
	if err := s.tokens.WriteRefreshToken(resp.Tokens.RefreshToken); err != nil {
		s.logger.Err(err).Msg("Failed to persist refresh token")
	}
}

// Logout clears every token and the session. Server side invalidation of the
// refresh token runs as a detached background task whose failure is only logged.
// IsLoading is left as it was.
func (s *Store) Logout() {
	refreshToken, hasRefresh := s.tokens.LocalRefreshToken()

	if err := s.tokens.Clear(); err != nil {
		s.logger.Err(err).Msg("Failed to clear stored tokens")
	}

	if hasRefresh {
		s.invalidateInBackground(refreshToken)
	}

	s.update(func(st *State) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		st.Error = ""
	})
}

func (s *Store) invalidateInBackground(refreshToken string) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.logoutTimeout)
		defer cancel()

		if err := s.api.Logout(ctx, refreshToken); err != nil {
			s.logger.Warn().Err(err).Msg("Server logout failed")
		}
	}()
}

// Wait blocks until background server calls started by Logout have finished.
func (s *Store) Wait() {
	s.background.Wait()
}

// ClearError drops the last login error.
func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Error = ""
	})
}

// SetUser replaces the user only, e.g. after a profile edit.
func (s *Store) SetUser(user *users.User) {
	s.update(func(st *State) {
		st.User = user.Clone()
	})
}

// SetToken replaces the access token outside the login flow and writes it to
// both persistence layers with the manual lifetime.
func (s *Store) SetToken(accessToken string) {
	s.update(func(st *State) {
		st.Token = accessToken
	})
	if err := s.tokens.SetAccessToken(accessToken, tokenstore.SourceManual); err != nil {
		s.logger.Err(err).Msg("Failed to persist access token")
	}
}

// HasPermission reports whether the current user holds p. No user, or a user
// without an assigned permission list, has no permissions.
func (s *Store) HasPermission(p users.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.HasPermission(p)
}

// HasRole is strict equality against the current user's role.
func (s *Store) HasRole(r users.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.HasRole(r)
}

// replace overwrites the whole state. Used by restoration.
func (s *Store) replace(next State) {
	s.update(func(st *State) {
		*st = next.clone()
	})
}

// update applies fn and persists the result under the lock, so the snapshot on
// disk is always the latest state. Listeners are notified outside it.
func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	if err := s.persist(snapshot); err != nil && !apperrors.Is(err, apperrors.ErrStoreUnavailable) {
		s.logger.Err(err).Msg("Failed to persist session snapshot")
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.clone())
	}
}
