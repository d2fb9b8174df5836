package fakeauthapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/tripsync-admin/authapi"
	"github.com/jrsteele09/tripsync-admin/token"
	"github.com/jrsteele09/tripsync-admin/users"
)

// FakeAuthAPI is an in-memory auth API. Accounts log in with their password,
// issued access tokens resolve back to their user until revoked.
type FakeAuthAPI struct {
	lock     sync.Mutex
	accounts map[string]account     // email -> account
	access   map[string]*users.User // access token -> user
	refresh  map[string]*users.User // refresh token -> user
	pairs    map[string]token.Pair  // email -> pair issued on next login
	calls    map[string]int
	failures map[string]error

	// LogoutDone, when set, receives every refresh token passed to Logout.
	LogoutDone chan string
}

type account struct {
	user     *users.User
	password string
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		accounts: make(map[string]account),
		access:   make(map[string]*users.User),
		refresh:  make(map[string]*users.User),
		pairs:    make(map[string]token.Pair),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// AddUser registers an account and the pair its next login returns.
func (f *FakeAuthAPI) AddUser(user *users.User, password string, pair token.Pair) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.accounts[user.Email] = account{user: user, password: password}
	f.pairs[user.Email] = pair
}

// IssueToken makes accessToken resolve to user, as if issued by an earlier login.
func (f *FakeAuthAPI) IssueToken(accessToken string, user *users.User) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.access[accessToken] = user
}

// FailNext makes every call to op ("login", "refresh", "logout", "me") fail with err.
func (f *FakeAuthAPI) FailNext(op string, err error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.failures[op] = err
}

// Calls returns how many times op was invoked.
func (f *FakeAuthAPI) Calls(op string) int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.calls[op]
}

func (f *FakeAuthAPI) Login(_ context.Context, email, password string) (*authapi.AuthResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls["login"]++
	if err := f.failures["login"]; err != nil {
		return nil, err
	}

	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, &authapi.AuthError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}

	pair := f.pairs[email]
	f.access[pair.AccessToken] = acc.user
	f.refresh[pair.RefreshToken] = acc.user
	return &authapi.AuthResponse{User: acc.user.Clone(), Tokens: pair}, nil
}

func (f *FakeAuthAPI) Refresh(_ context.Context, refreshToken string) (*authapi.AuthResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls["refresh"]++
	if err := f.failures["refresh"]; err != nil {
		return nil, err
	}

	user, ok := f.refresh[refreshToken]
	if !ok {
		return nil, &authapi.AuthError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	pair := token.Pair{AccessToken: refreshToken + "-access", RefreshToken: refreshToken + "-next", ExpiresIn: 3600}
	delete(f.refresh, refreshToken)
	f.access[pair.AccessToken] = user
	f.refresh[pair.RefreshToken] = user
	return &authapi.AuthResponse{User: user.Clone(), Tokens: pair}, nil
}

func (f *FakeAuthAPI) Logout(_ context.Context, refreshToken string) error {
	f.lock.Lock()
	f.calls["logout"]++
	err := f.failures["logout"]
	if err == nil {
		delete(f.refresh, refreshToken)
	}
	done := f.LogoutDone
	f.lock.Unlock()

	if done != nil {
		done <- refreshToken
	}
	return err
}

func (f *FakeAuthAPI) GetCurrentUser(_ context.Context, accessToken string) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls["me"]++
	if err := f.failures["me"]; err != nil {
		return nil, err
	}

	user, ok := f.access[accessToken]
	if !ok {
		return nil, &authapi.AuthError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return user.Clone(), nil
}
