// Package websearch provides the web_search tool, backed by the MiniMax
// Coding Plan search endpoint.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/minimax/format"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
)

// ToolName is the name the tool is registered under.
const ToolName = "web_search"

// Query length bounds, in characters.
const (
	MinQueryLen = 2
	MaxQueryLen = 500
)

// Params are the tool's input parameters.
type Params struct {
	Query string `json:"query"`
}

// Details describes a search in progress or completed.
type Details struct {
	State       toolbox.Status `json:"status"`
	Query       string         `json:"query"`
	ResultCount int            `json:"resultCount"`
	Raw         any            `json:"raw,omitempty"`
}

// Status implements toolbox.Details.
func (d Details) Status() toolbox.Status { return d.State }

// Search executes web searches for one session.
type Search struct {
	session *session.Session
	client  *apiclient.Client
	log     *slog.Logger
}

// New creates a Search. A nil logger discards output.
func New(sess *session.Session, client *apiclient.Client, log *slog.Logger) *Search {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Search{session: sess, client: client, log: log}
}

// Tools returns a ToolBox containing the web_search tool.
func (s *Search) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(s.Tool())

	return tb
}

// Tool returns the web_search tool definition.
func (s *Search) Tool() toolbox.Tool {
	return toolbox.Tool{
		Name:  ToolName,
		Label: "Web Search",
		Description: `Search the web for information based on a query. Returns search results and related suggestions.

Usage:
- web_search({ query: "TypeScript best practices 2024" })
- web_search({ query: "How to configure pi coding agent" })

Returns: List of relevant web pages with titles, URLs, and snippets`,
		InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Search query","minLength":2,"maxLength":500}},"required":["query"]}`),
		Handler:     s.handle,
	}
}

func (s *Search) handle(ctx context.Context, input json.RawMessage, onUpdate toolbox.UpdateFunc) toolbox.Result {
	var p Params
	if err := json.Unmarshal(input, &p); err != nil {
		return toolbox.NewErrorResult("Invalid input", err.Error())
	}

	return s.Execute(ctx, p, onUpdate)
}

// Execute runs one search. It never returns a Go error; every outcome is a
// Result.
func (s *Search) Execute(ctx context.Context, p Params, onUpdate toolbox.UpdateFunc) toolbox.Result {
	if !s.session.Configured() {
		return format.NotConfigured()
	}

	query := strings.TrimSpace(p.Query)
	if n := utf8.RuneCountInString(query); n < MinQueryLen {
		return toolbox.NewErrorResult("Invalid query", "Query must be at least 2 characters long")
	} else if n > MaxQueryLen {
		return toolbox.NewErrorResult("Invalid query", "Query must be at most 500 characters long")
	}

	onUpdate.Emit(toolbox.Update{
		Text:    fmt.Sprintf("🔍 Searching: %q", query),
		Details: Details{State: toolbox.StatusSearching, Query: query},
	})

	payload, err := s.client.PostJSON(ctx, apiclient.PathWebSearch, Params{Query: query})
	if err != nil {
		s.log.Debug("web_search failed", "query", query, "error", err)
		return format.FromCallError(ctx, err, "Search failed", "Search cancelled")
	}

	count := 0
	if obj, ok := payload.(map[string]any); ok {
		if results, ok := obj["results"].([]any); ok {
			count = len(results)
		}
	}

	s.log.Debug("web_search complete", "query", query, "results", count)

	return toolbox.Result{
		Content: toolbox.TextBlocks(format.FormatSearchResults(payload)),
		Details: Details{
			State:       toolbox.StatusComplete,
			Query:       query,
			ResultCount: count,
			Raw:         payload,
		},
	}
}
