// Package dashboardapi is the bearer-authorized client for the dashboard's
// CRUD collections: tours, users and locations.
package dashboardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/tripsync-admin/authapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Collection paths relative to the API base URL.
const (
	PathTours     = "/api/tours"
	PathUsers     = "/api/users"
	PathLocations = "/api/locations"
)

const requestIDHeader = "X-Request-Id"

// Client calls the REST API with the session's access token on every request.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	onUnauthorized func()
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseTransport sets the transport beneath the oauth2 layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport.(*oauth2.Transport).Base = rt
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUnauthorizedHandler is called whenever the API answers 401, typically
// session.Store.Logout.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client that authorizes with tokens from source. source is
// consulted on every request and is not cached.
func New(baseURL string, source oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: source},
			Timeout:   10 * time.Second,
		},
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.do(ctx, op, http.MethodGet, target, nil, out)
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodDelete, c.baseURL+path, nil, nil)
}

// send writes body as JSON with method (POST, PUT or PATCH) and decodes the reply into out.
func (c *Client) send(ctx context.Context, op, method, path string, body, out any) error {
	return c.do(ctx, op, method, c.baseURL+path, body, out)
}

func (c *Client) do(ctx context.Context, op, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrapf(err, "[dashboardapi %s] encode request", op)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return apperrors.Wrapf(err, "[dashboardapi %s] build request", op)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotAuthenticated) {
			return apperrors.Wrapf(err, "[dashboardapi %s] no session", op)
		}
		c.logger.Err(err).Str("op", op).Str("request_id", requestID).Msg("API request failed")
		return &authapi.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("op", op).Str("request_id", requestID).Int("status", resp.StatusCode).Msg("API request")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr := authapi.ResponseError(resp)
		c.logger.Warn().Str("op", op).Str("request_id", requestID).Msg("Session rejected by API")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	case resp.StatusCode == http.StatusNotFound:
		apiErr := authapi.ResponseError(resp)
		return apperrors.Wrapf(apperrors.ErrNotFound, "[dashboardapi %s] %s", op, apiErr.Message)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		apiErr := authapi.ResponseError(resp)
		if resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Error().Str("op", op).Str("request_id", requestID).Int("status", resp.StatusCode).Msg(apiErr.Message)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, "[dashboardapi %s] decode response", op)
	}
	return nil
}

// listEnvelope accepts both a bare JSON array and a {"data": [...]} wrapper.
type listEnvelope[T any] struct {
	Items []T
}

func (l *listEnvelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		l.Items = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Items)
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	l.Items = wrapped.Data
	return nil
}

// list fetches a whole collection, then filters and pages it locally. A failed
// fetch yields an empty page together with the error.
func list[T any](ctx context.Context, c *Client, op, path string, query url.Values, q ListQuery, match func(T, string) bool) (Page[T], error) {
	var out listEnvelope[T]
	if err := c.get(ctx, op, path, query, &out); err != nil {
		return Paginate[T](nil, q, match), err
	}
	return Paginate(out.Items, q, match), nil
}

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

func requireID(op, id string) error {
	if id == "" {
		return apperrors.Wrapf(apperrors.ErrNotFound, "[dashboardapi %s] id is required", op)
	}
	return nil
}
