package authapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/tripsync-admin/authapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@tripsync.test"
	testPassword = "password123"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *authapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return authapi.New(srv.URL)
}

func TestClient_Login(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, authapi.PathLogin, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var creds authapi.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Email != testEmail || creds.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"admin@tripsync.test","role":"admin"},"tokens":{"accessToken":"A","refreshToken":"R","expiresIn":3600}}`))
	})

	t.Run("success", func(t *testing.T) {
		resp, err := client.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)
		require.Equal(t, "u1", resp.User.ID)
		require.Equal(t, "A", resp.Tokens.AccessToken)
		require.Equal(t, "R", resp.Tokens.RefreshToken)
		require.Equal(t, 3600, resp.Tokens.ExpiresIn)
	})

	t.Run("rejected with server message", func(t *testing.T) {
		_, err := client.Login(context.Background(), testEmail, "wrong")
		require.Error(t, err)
		require.Equal(t, "Invalid credentials", err.Error())

		var authErr *authapi.AuthError
		require.True(t, errors.As(err, &authErr))
		require.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		require.ErrorIs(t, err, apperrors.ErrTokenRejected)
	})
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"Bad email"}`, message: "Bad email"},
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"bad_request"}`, message: "bad_request"},
		{name: "json without either", status: http.StatusBadRequest, body: `{}`, message: "Network response was not ok"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>oops</html>`, message: "Bad Gateway"},
		{name: "unknown status", status: 599, body: `nope`, message: "Network response was not ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Refresh(context.Background(), "R")
			require.Error(t, err)
			require.Equal(t, tt.message, err.Error())
			require.ErrorIs(t, err, apperrors.ErrRejected)
		})
	}
}

func TestClient_GetCurrentUser(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, authapi.PathMe, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","email":"a@b.c","role":"tour_guide","permissions":["tours:read"]}`))
	})

	user, err := client.GetCurrentUser(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.True(t, user.HasPermission("tours:read"))

	_, err = client.GetCurrentUser(context.Background(), "bad")
	require.ErrorIs(t, err, apperrors.ErrTokenRejected)
	require.Equal(t, "Token expired", err.Error())
}

func TestClient_Logout(t *testing.T) {
	var got string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, authapi.PathLogout, r.URL.Path)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = body.RefreshToken
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Logout(context.Background(), "R"))
	require.Equal(t, "R", got)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := authapi.New(url)
	_, err := client.GetCurrentUser(context.Background(), "T")
	require.ErrorIs(t, err, apperrors.ErrNetwork)

	var netErr *authapi.NetworkError
	require.True(t, errors.As(err, &netErr))
	require.Equal(t, "me", netErr.Op)
}
