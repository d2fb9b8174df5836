package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/tripsync-admin/guard"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email    string // Preserve email on error
	Redirect string // Protected path to return to after login
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := LoginPageData{Email: q.Get("email")}
		if target, ok := s.rules.SafeRedirect(q.Get(guard.RedirectParam)); ok {
			data.Redirect = target
		}
		s.render(w, http.StatusOK, "login.html", PageData{
			Title:  "Sign in",
			Error:  q.Get("error"),
			Notice: q.Get("notice"),
			Data:   data,
		})
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login).
// On success both token cookies are set and the browser goes to the sanitized
// redirect target, or the dashboard.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		target, ok := s.rules.SafeRedirect(r.FormValue(guard.RedirectParam))
		if !ok {
			target = s.rules.Home
		}

		data := LoginPageData{Email: email}
		if target != s.rules.Home {
			data.Redirect = target
		}

		if email == "" || password == "" {
			s.render(w, http.StatusBadRequest, "login.html", PageData{Title: "Sign in", Error: "Email and password are required", Data: data})
			return
		}

		resp, err := s.auth.Login(r.Context(), email, password)
		if err == nil && (resp == nil || resp.User == nil || resp.Tokens.AccessToken == "") {
			err = apperrors.ErrInvalidCredentials
		}
		if err != nil {
			s.logger.Info().Err(err).Msg("Login failed")
			status := http.StatusUnauthorized
			if apperrors.Is(err, apperrors.ErrNetwork) {
				status = http.StatusBadGateway
			}
			s.render(w, status, "login.html", PageData{Title: "Sign in", Error: loginErrorMessage(err), Data: data})
			return
		}

		tokens := s.requestTokens(w, r)
		if err := tokens.WriteAccessToken(resp.Tokens.AccessToken, resp.Tokens.Lifetime()); err != nil {
			s.logger.Err(err).Msg("Failed to set access token cookie")
		}
		if resp.Tokens.RefreshToken != "" {
			if err := tokens.WriteRefreshToken(resp.Tokens.RefreshToken); err != nil {
				s.logger.Err(err).Msg("Failed to set refresh token cookie")
			}
		}

		s.logger.Info().Str("user_id", resp.User.ID).Msg("Logged in")
		redirectSuccess(w, r, target)
	}
}

func loginErrorMessage(err error) string {
	if apperrors.Is(err, apperrors.ErrNetwork) {
		return "The authentication service is unreachable. Try again shortly."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Login failed"
}

// LogoutHandler clears both token cookies and invalidates the refresh token
// server side in the background (POST /auth/logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokens := s.requestTokens(w, r)
		refreshToken, hasRefresh := tokens.ReadRefreshToken()
		s.clearTokens(tokens)

		if hasRefresh {
			s.background.Add(1)
			go func() {
				defer s.background.Done()
				ctx, cancel := context.WithTimeout(context.Background(), s.logoutTimeout)
				defer cancel()
				if err := s.auth.Logout(ctx, refreshToken); err != nil {
					s.logger.Warn().Err(err).Msg("Server logout failed")
				}
			}()
		}

		redirectWithNotice(w, r, s.rules.Login, "notice", "You have been signed out")
	}
}

// PasswordHelpHandler renders the public password pages. Password changes are
// handled by the auth service; these pages point administrators there.
func (s *Server) PasswordHelpHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, "password_help.html", PageData{Title: title})
	}
}
