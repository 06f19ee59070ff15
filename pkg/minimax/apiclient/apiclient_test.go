package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/minimax/pkg/minimax/credentials"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sess := session.New(credentials.Credentials{APIKey: "sk-test-key", APIHost: srv.URL, Configured: true})

	return New(sess, WithHTTPClient(srv.Client())), sess
}

func TestPostJSON_Success(t *testing.T) {
	var gotAuth, gotType, gotPath, gotMethod string
	var gotBody map[string]any

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	out, err := c.PostJSON(context.Background(), PathWebSearch, map[string]string{"query": "golang"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test-key", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/mcp/web_search", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, map[string]any{"query": "golang"}, gotBody)
	assert.Equal(t, map[string]any{"results": []any{}}, out)
}

func TestPostJSON_Unauthorized(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c, sess := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte("bad key"))
		})

		_, err := c.PostJSON(context.Background(), PathWebSearch, nil)
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.False(t, sess.Configured())
	}
}

func TestPostJSON_APIError(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := c.PostJSON(context.Background(), PathWebSearch, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "slow down", apiErr.Body)
	assert.True(t, sess.Configured())
}

func TestPostJSON_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.PostJSON(context.Background(), PathWebSearch, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestPostJSON_Cancelled(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PostJSON(ctx, PathWebSearch, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}

func TestPing(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})

	assert.True(t, c.Ping(context.Background()))
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, PathPing, gotPath)
}

func TestPing_Rejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	assert.False(t, c.Ping(context.Background()))
}

func TestPing_NoKey(t *testing.T) {
	c := New(session.New(credentials.Credentials{}))

	assert.False(t, c.Ping(context.Background()))
}

func TestPing_UnreachableCountsAsConfigured(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	c := New(session.New(credentials.Credentials{APIKey: "k", APIHost: host, Configured: true}))

	assert.True(t, c.Ping(context.Background()))
}
