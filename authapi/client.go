// Package authapi is a stateless client for the remote authentication service.
// It performs no caching and no retries.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Endpoint paths relative to the API base URL.
const (
	PathLogin   = "/api/auth/login"
	PathRefresh = "/api/auth/refresh"
	PathLogout  = "/api/auth/logout"
	PathMe      = "/api/auth/me"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-Id"
)

// Client talks to the auth endpoints of the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a user and token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, PathLogin, Credentials{Email: email, Password: password}, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new user and token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "refresh", http.MethodPost, PathRefresh, refreshRequest{RefreshToken: refreshToken}, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the server to invalidate refreshToken. Best effort: callers
// must not make the local logout depend on it.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, "logout", http.MethodPost, PathLogout, refreshRequest{RefreshToken: refreshToken}, "", nil)
}

// GetCurrentUser validates accessToken and returns the user it belongs to.
func (c *Client) GetCurrentUser(ctx context.Context, accessToken string) (*users.User, error) {
	var out users.User
	if err := c.do(ctx, "me", http.MethodGet, PathMe, nil, accessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, bearer string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[authapi %s] encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[authapi %s] build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Err(err).Str("op", op).Str("request_id", requestID).Msg("API request failed")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		authErr := ResponseError(resp)
		c.logger.Warn().Str("op", op).Str("request_id", requestID).Int("status", resp.StatusCode).Msg(authErr.Message)
		return authErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[authapi %s] decode response: %w", op, err)
	}
	return nil
}

// ResponseError reads a non-2xx response into an AuthError. The body is consumed.
func ResponseError(resp *http.Response) *AuthError {
	return &AuthError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
}

// errorMessage prefers the body's message, then its error field, then the
// HTTP status text.
func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var body errorBody
		if json.Unmarshal(data, &body) == nil {
			if body.Message != "" {
				return body.Message
			}
			if body.Error != "" {
				return body.Error
			}
			return defaultErrorMessage
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return defaultErrorMessage
}
