// Package apiclient issues requests to the MiniMax Coding Plan API on behalf
// of the tool adapters. Each call makes exactly one HTTP request carrying the
// session's bearer key and the caller's context; there are no retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/germanamz/minimax/pkg/minimax/session"
)

// Remote endpoints, relative to the session's API host.
const (
	PathWebSearch       = "/mcp/web_search"
	PathUnderstandImage = "/mcp/understand_image"
	PathPing            = "/mcp/ping"
)

// maxBodySize caps how much of a response body is read (1MB).
const maxBodySize = 1 << 20

// ErrUnauthorized is returned when the API rejects the key (401 or 403).
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// APIError is a non-success response other than an authentication failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the API host configured in a session.
type Client struct {
	session *session.Session
	http    *http.Client
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Client bound to sess.
func New(sess *session.Session, opts ...Option) *Client {
	c := &Client{
		session: sess,
		http:    &http.Client{},
		log:     slog.New(slog.DiscardHandler),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// PostJSON sends body as JSON to path and decodes the JSON response. A 401 or
// 403 invalidates the session and returns ErrUnauthorized; any other
// non-success status returns an *APIError. Cancellation of ctx surfaces as an
// error satisfying errors.Is(err, context.Canceled).
func (c *Client) PostJSON(ctx context.Context, path string, body any) (any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if isAuthFailure(resp.StatusCode) {
			c.session.Invalidate()
			c.log.Warn("minimax api rejected key", "path", path, "status", resp.StatusCode)

			return nil, ErrUnauthorized
		}

		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("apiclient: decode response: %w", err)
	}

	return out, nil
}

// Ping probes the liveness endpoint. It returns false when no key is set or
// the key is rejected. A transport failure is not evidence of a bad key, so
// it reports true.
func (c *Client) Ping(ctx context.Context) bool {
	if c.session.Snapshot().APIKey == "" {
		return false
	}

	resp, err := c.do(ctx, http.MethodGet, PathPing, nil)
	if err != nil {
		c.log.Debug("minimax ping failed", "error", err)
		return true
	}
	defer resp.Body.Close() //nolint:errcheck // body unused

	return !isAuthFailure(resp.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	st := c.session.Snapshot()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, st.APIHost+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+st.APIKey)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}

	c.log.Debug("minimax api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	return resp, nil
}

func isAuthFailure(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
