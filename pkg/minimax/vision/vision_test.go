package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/minimax/credentials"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	vision  *Vision
	session *session.Session
	calls   *atomic.Int32
	asked   *atomic.Int32
}

func newFixture(t *testing.T, configured bool, answer bool, h http.HandlerFunc) fixture {
	t.Helper()

	var calls, asked atomic.Int32
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

	confirm := func(_ context.Context, _, _ string) (bool, error) {
		asked.Add(1)
		return answer, nil
	}

	return fixture{
		vision:  New(sess, client, Options{Confirm: confirm}),
		session: sess,
		calls:   &calls,
		asked:   &asked,
	}
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestValidateImageURL(t *testing.T) {
	valid := []string{"https://x/y.png", "http://example.com/a.jpg", "./local.png", "/abs/path.png", "../up.png"}
	invalid := []string{"ftp://x", "local.png", "data:image/png;base64,AAA", "https://", "./"}

	for _, s := range valid {
		assert.True(t, ValidateImageURL(s), s)
	}

	for _, s := range invalid {
		assert.False(t, ValidateImageURL(s), s)
	}
}

func TestIsExpensive(t *testing.T) {
	v := New(nil, nil, Options{})

	assert.True(t, v.IsExpensive("Please DESCRIBE this"))
	assert.True(t, v.IsExpensive("extract the text"))
	assert.True(t, v.IsExpensive(strings.Repeat("a", DefaultLongPrompt+1)))
	assert.False(t, v.IsExpensive("What color is the button?"))

	short := New(nil, nil, Options{LongPrompt: 5})
	assert.True(t, short.IsExpensive("what is this"))
}

func TestExecute_Success(t *testing.T) {
	var gotBody map[string]any

	f := newFixture(t, true, true, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcp/understand_image", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"analysis":"A cat on a keyboard"}`))
	})

	var updates []toolbox.Update
	r := f.vision.Execute(context.Background(), Params{Prompt: "What is this?", ImageURL: "https://x/y.png"}, func(u toolbox.Update) {
		updates = append(updates, u)
	})

	assert.False(t, r.IsError, r.Text())
	assert.Equal(t, "A cat on a keyboard", r.Text())

	d, ok := r.Details.(Details)
	require.True(t, ok)
	assert.Equal(t, toolbox.StatusComplete, d.Status())
	assert.Equal(t, "What is this?", d.Prompt)
	assert.Equal(t, "https://x/y.png", d.ImageURL)

	assert.Equal(t, map[string]any{"prompt": "What is this?", "image_url": "https://x/y.png"}, gotBody)
	require.Len(t, updates, 1)
	assert.Equal(t, toolbox.StatusAnalyzing, updates[0].Details.Status())
	assert.Equal(t, int32(0), f.asked.Load())
}

func TestExecute_FallbackToJSON(t *testing.T) {
	f := newFixture(t, true, true, respond(`{"labels":["cat"]}`))

	r := f.vision.Execute(context.Background(), Params{Prompt: "What is this?", ImageURL: "./cat.png"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, `{"labels":["cat"]}`, r.Text())
}

func TestExecute_NotConfigured(t *testing.T) {
	f := newFixture(t, false, true, respond(`{}`))

	r := f.vision.Execute(context.Background(), Params{Prompt: "What is this?", ImageURL: "./cat.png"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "not configured")
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExecute_ValidationErrors(t *testing.T) {
	f := newFixture(t, true, true, respond(`{}`))

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"missing prompt", Params{ImageURL: "./a.png"}, "Missing parameters"},
		{"missing image", Params{Prompt: "hi"}, "Missing parameters"},
		{"bad scheme", Params{Prompt: "hi", ImageURL: "ftp://x"}, "Invalid image URL"},
		{"long prompt", Params{Prompt: strings.Repeat("p", MaxPromptLen+1), ImageURL: "./a.png"}, "Invalid parameters"},
		{"long url", Params{Prompt: "hi", ImageURL: "https://x/" + strings.Repeat("u", MaxImageURLLen)}, "Invalid parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.vision.Execute(context.Background(), tt.params, nil)
			assert.True(t, r.IsError)
			assert.Contains(t, r.Text(), tt.want)
		})
	}

	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExecute_ExpensiveConfirmed(t *testing.T) {
	f := newFixture(t, true, true, respond(`{"analysis":"ok"}`))

	r := f.vision.Execute(context.Background(), Params{Prompt: "Describe this screenshot", ImageURL: "./a.png"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, int32(1), f.asked.Load())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestExecute_ExpensiveDeclined(t *testing.T) {
	f := newFixture(t, true, false, respond(`{"analysis":"ok"}`))

	var updates []toolbox.Update
	r := f.vision.Execute(context.Background(), Params{Prompt: "Analyze this", ImageURL: "./a.png"}, func(u toolbox.Update) {
		updates = append(updates, u)
	})

	assert.False(t, r.IsError)
	assert.Equal(t, toolbox.StatusCancelled, r.Status())
	assert.Equal(t, "Analysis cancelled", r.Text())
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Empty(t, updates)
}

func TestExecute_ConfirmErrorCancels(t *testing.T) {
	f := newFixture(t, true, true, respond(`{"analysis":"ok"}`))
	f.vision.confirm = func(context.Context, string, string) (bool, error) {
		return false, errors.New("prompt closed")
	}

	r := f.vision.Execute(context.Background(), Params{Prompt: "extract text", ImageURL: "./a.png"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, toolbox.StatusCancelled, r.Status())
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExecute_Forbidden(t *testing.T) {
	f := newFixture(t, true, true, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	r := f.vision.Execute(context.Background(), Params{Prompt: "What is this?", ImageURL: "./a.png"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "Authentication failed")
	assert.False(t, f.session.Configured())
}

func TestExecute_APIErrorEmptyBody(t *testing.T) {
	f := newFixture(t, true, true, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	r := f.vision.Execute(context.Background(), Params{Prompt: "What is this?", ImageURL: "./a.png"}, nil)

	assert.True(t, r.IsError)
	assert.Contains(t, r.Text(), "API error (502)")
	assert.Contains(t, r.Text(), "Unknown error occurred")
}

func TestExecute_PreCancelled(t *testing.T) {
	f := newFixture(t, true, true, respond(`{"analysis":"ok"}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := f.vision.Execute(ctx, Params{Prompt: "What is this?", ImageURL: "./a.png"}, nil)

	assert.False(t, r.IsError)
	assert.Equal(t, toolbox.StatusCancelled, r.Status())
	assert.Equal(t, "Analysis cancelled", r.Text())
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestTool_Call(t *testing.T) {
	f := newFixture(t, true, true, respond(`{"analysis":"fine"}`))

	r := f.vision.Tools().Call(context.Background(), toolbox.Call{
		Name:      ToolName,
		Arguments: `{"prompt":"What is this?","image_url":"https://x/y.png"}`,
	}, nil)

	assert.False(t, r.IsError, r.Text())
	assert.Equal(t, "fine", r.Text())
}
