package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/tripsync-admin/authapi/fakeauthapi"
	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	"github.com/jrsteele09/tripsync-admin/internal/config"
	"github.com/jrsteele09/tripsync-admin/server"
	"github.com/jrsteele09/tripsync-admin/token"
	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse"

type testFixture struct {
	api    *fakeauthapi.FakeAuthAPI
	server *server.Server

	lock      sync.Mutex
	restAuth  string
	restCalls int
	rejectAll bool
}

func (f *testFixture) restStats() (string, int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.restAuth, f.restCalls
}

func (f *testFixture) rejectAPI() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.rejectAll = true
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{api: fakeauthapi.NewFakeAuthAPI()}
	user := &users.User{ID: "u-1", Email: "ops@tripsync.test", FullName: "Ops Admin", Role: users.RoleAdmin}
	f.api.AddUser(user, testPassword, token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresIn: 3600})
	f.api.IssueToken("valid", user)

	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lock.Lock()
		f.restCalls++
		f.restAuth = r.Header.Get("Authorization")
		reject := f.rejectAll
		f.lock.Unlock()

		if reject {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case dashboardapi.PathTours:
			_ = json.NewEncoder(w).Encode([]dashboardapi.Tour{
				{ID: "t-1", Title: "Ha Long Bay Cruise", Status: dashboardapi.TourActive},
				{ID: "t-2", Title: "Sapa Trek", Status: dashboardapi.TourDraft},
			})
		case dashboardapi.PathUsers:
			_ = json.NewEncoder(w).Encode([]users.User{*user})
		case dashboardapi.PathLocations:
			_ = json.NewEncoder(w).Encode([]dashboardapi.Location{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(rest.Close)

	t.Setenv("ENV", "DEV")
	t.Setenv("API_URL", rest.URL)

	s, err := server.New(config.New(), f.api)
	require.NoError(t, err)
	f.server = s
	return f
}

func (f *testFixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func loginForm(email, password, redirect string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	if redirect != "" {
		form.Set("redirect", redirect)
	}
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestServer_GuardRedirects(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/tours/42", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "/login?redirect=%2Ftours%2F42", rec.Header().Get("Location"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/", nil), &http.Cookie{Name: "authToken", Value: "valid"})
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login?redirect=/dashboard", nil), &http.Cookie{Name: "authToken", Value: "valid"})
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Equal(t, 0, f.api.Calls("me"))
}

func TestServer_FormPostWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/tours/42/delete", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	// The browser follows a 303 with a GET, which the login page answers.
	rec = f.do(httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `name="redirect"`)

	_, calls := f.restStats()
	require.Equal(t, 0, calls)
}

func TestServer_LoginPage(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/login?redirect=%2Ftours", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="redirect" value="/tours"`)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/login?redirect=https%3A%2F%2Fevil.test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "evil.test")
}

func TestServer_LoginSubmission(t *testing.T) {
	t.Run("success sets both cookies and follows redirect", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(loginForm("ops@tripsync.test", testPassword, "/tours/42"))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/tours/42", rec.Header().Get("Location"))

		access := responseCookie(t, rec, "authToken")
		require.Equal(t, "access-1", access.Value)
		require.Equal(t, 3600, access.MaxAge)
		require.Equal(t, http.SameSiteStrictMode, access.SameSite)
		require.Equal(t, "/", access.Path)

		refresh := responseCookie(t, rec, "refreshToken")
		require.Equal(t, "refresh-1", refresh.Value)
		require.Equal(t, 7*24*60*60, refresh.MaxAge)
	})

	t.Run("foreign redirect falls back to dashboard", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(loginForm("ops@tripsync.test", testPassword, "https://evil.test/tours"))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(loginForm("ops@tripsync.test", "wrong", ""))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid credentials")
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("missing fields", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(loginForm("", "", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, 0, f.api.Calls("login"))
	})
}

func TestServer_ProtectedPages(t *testing.T) {
	t.Run("tours list", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/tours?search=sapa", nil), &http.Cookie{Name: "authToken", Value: "valid"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "Sapa Trek")
		require.NotContains(t, body, "Ha Long Bay Cruise")
		auth, _ := f.restStats()
		require.Equal(t, "Bearer valid", auth)
	})

	t.Run("dashboard counts", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), &http.Cookie{Name: "authToken", Value: "valid"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Ops Admin")
		_, calls := f.restStats()
		require.Equal(t, 3, calls)
	})

	t.Run("token rejected by auth service", func(t *testing.T) {
		f := setupTestFixture(t)

		rec := f.do(httptest.NewRequest(http.MethodGet, "/users", nil), &http.Cookie{Name: "authToken", Value: "stale"})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?redirect=%2Fusers", rec.Header().Get("Location"))
		require.Equal(t, -1, responseCookie(t, rec, "authToken").MaxAge)
		_, calls := f.restStats()
		require.Equal(t, 0, calls)
	})

	t.Run("token rejected by the API", func(t *testing.T) {
		f := setupTestFixture(t)
		f.rejectAPI()

		rec := f.do(httptest.NewRequest(http.MethodGet, "/locations", nil), &http.Cookie{Name: "authToken", Value: "valid"})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, -1, responseCookie(t, rec, "refreshToken").MaxAge)
	})
}

func TestServer_Logout(t *testing.T) {
	f := setupTestFixture(t)
	f.api.LogoutDone = make(chan string, 1)

	rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil),
		&http.Cookie{Name: "authToken", Value: "valid"},
		&http.Cookie{Name: "refreshToken", Value: "refresh-1"})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login?notice="))

	require.Equal(t, -1, responseCookie(t, rec, "authToken").MaxAge)
	require.Equal(t, -1, responseCookie(t, rec, "refreshToken").MaxAge)
	require.Contains(t, rec.Header().Values("Set-Cookie")[0], "Expires=Thu, 01 Jan 1970 00:00:00 GMT")

	require.Equal(t, "refresh-1", <-f.api.LogoutDone)
	f.server.Wait()
}

func TestServer_StaticAssets(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=300")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
