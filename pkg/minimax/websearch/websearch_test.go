package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/minimax/credentials"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	search  *Search
	session *session.Session
	calls   *atomic.Int32
}

func newFixture(t *testing.T, configured bool, h http.HandlerFunc) fixture {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	creds := credentials.Credentials{APIHost: srv.URL}
	if configured {
		creds.APIKey = "sk-test-key-123456"
		creds.Configured = true
	}

	sess := session.New(creds)
	client := apiclient.New(sess, apiclient.WithHTTPClient(srv.Client()))

	return fixture{search: New(sess, client, nil), session: sess, calls: &calls}
}

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestExecute_Success(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	f := newFixture(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/mcp/web_search", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		okHandler(`{"results":[{"title":"Go","url":"https://go.dev","snippet":"The Go language"}],"suggestions":["golang tutorial"]}`)(w, r)
	})

	var updates []toolbox.Update
	r := f.search.Execute(context.Background(), Params{Query: "  golang  "}, func(u toolbox.Update) {
		updates = append(updates, u)
	})

	assert.False(t, r.IsError, r.Text())
	assert.Contains(t, r.Text(), "1. Go")
	assert.Contains(t, r.Text(), "https://go.dev")
	assert.Contains(t, r.Text(), "1. golang tutorial")

	d, ok := r.Details.(Details)
	require.True(t, ok)
	assert.Equal(t, toolbox.StatusComplete, d.Status())
	assert.Equal(t, "golang", d.Query)
	assert.Equal(t, 1, d.ResultCount)
	assert.NotNil(t, d.Raw)

	assert.Equal(t, "Bearer sk-test-key-123456", gotAuth)
	assert.Equal(t, map[string]any{"query": "golang"}, gotBody)

	require.Len(t, updates, 1)
	assert.Equal(t, toolbox.StatusSearching, updates[0].Details.Status())
	assert.Contains(t, updates[0].Text, "golang")
}

func TestExecute_NoResultsArray(t *testing.T) {
	f := newFixture(t, true, okHandler(`{}`))

	r := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, "{}", r.Text())
	assert.Equal(t, 0, r.Details.(Details).ResultCount)
}

func TestExecute_InvalidQuery(t *testing.T) {
	f := newFixture(t, true, okHandler(`{}`))

	for _, q := range []string{"", "a", "  a  ", strings.Repeat("q", MaxQueryLen+1)} {
		r := f.search.Execute(context.Background(), Params{Query: q}, nil)
		assert.True(t, r.IsError)
		assert.Contains(t, r.Text(), "Invalid query")
	}

	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExecute_NotConfigured(t *testing.T) {
	f := newFixture(t, false, okHandler(`{}`))

	r := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "not configured")
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExecute_Unauthorized(t *testing.T) {
	f := newFixture(t, true, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	})

	r := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "Authentication failed")
	assert.False(t, f.session.Configured())

	again := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)
	assert.Contains(t, again.Text(), "not configured")
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestExecute_APIError(t *testing.T) {
	f := newFixture(t, true, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	r := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "API error (500)")
	assert.Contains(t, r.Text(), "upstream exploded")
	assert.True(t, f.session.Configured())
}

func TestExecute_MalformedJSON(t *testing.T) {
	f := newFixture(t, true, okHandler(`{"results":`))

	r := f.search.Execute(context.Background(), Params{Query: "golang"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "Search failed")
}

func TestExecute_PreCancelled(t *testing.T) {
	f := newFixture(t, true, okHandler(`{}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := f.search.Execute(ctx, Params{Query: "golang"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, toolbox.StatusCancelled, r.Status())
	assert.Equal(t, "Search cancelled", r.Text())
}

func TestExecute_CancelledInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, true, func(_ http.ResponseWriter, r *http.Request) {
		cancel()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	r := f.search.Execute(ctx, Params{Query: "golang"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, toolbox.StatusCancelled, r.Status())
}

func TestTool_HandlerDecodesInput(t *testing.T) {
	f := newFixture(t, true, okHandler(`{"results":[]}`))

	r := f.search.Tools().Call(context.Background(), toolbox.Call{
		ID:        "tc1",
		Name:      ToolName,
		Arguments: `{"query":"golang"}`,
	}, nil)

	assert.False(t, r.IsError, r.Text())
	assert.Equal(t, toolbox.StatusComplete, r.Status())
}

func TestTool_HandlerInvalidInput(t *testing.T) {
	f := newFixture(t, true, okHandler(`{}`))

	r := f.search.Tools().Call(context.Background(), toolbox.Call{Name: ToolName, Arguments: `{"query":`}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "Invalid input")
}
