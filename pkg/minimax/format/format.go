// Package format renders MiniMax API payloads as text and maps request
// failures onto tool results.
package format

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
)

// NoResults is returned for an absent search payload.
const NoResults = "No results found"

// maxSnippet is the number of characters of a snippet kept before truncation.
const maxSnippet = 200

// FormatSearchResults renders a decoded web_search payload. Results and
// suggestions are rendered when present; otherwise the payload is dumped as
// indented JSON.
func FormatSearchResults(payload any) string {
	if payload == nil {
		return NoResults
	}

	var b strings.Builder

	obj, _ := payload.(map[string]any)

	if results, ok := obj["results"].([]any); ok {
		b.WriteString("🔍 Search Results\n\n")

		for i, raw := range results {
			item, _ := raw.(map[string]any)

			fmt.Fprintf(&b, "%d. %s\n", i+1, stringField(item, "title", "No title"))
			fmt.Fprintf(&b, "   📎 %s\n", stringField(item, "url", "N/A"))

			if snippet := stringField(item, "snippet", ""); snippet != "" {
				fmt.Fprintf(&b, "   %s\n", Truncate(snippet, maxSnippet))
			}

			b.WriteString("\n")
		}
	}

	if suggestions, ok := obj["suggestions"].([]any); ok && len(suggestions) > 0 {
		b.WriteString("💡 Suggestions:\n")

		for i, s := range suggestions {
			fmt.Fprintf(&b, "  %d. %v\n", i+1, s)
		}

		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return PrettyJSON(payload)
	}

	return b.String()
}

// Truncate shortens s to n characters, appending "..." when anything was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}

// PrettyJSON renders v as two-space indented JSON.
func PrettyJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}

// CompactJSON renders v as single-line JSON.
func CompactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}

// FromCallError turns a failed API call into a tool result. Cancellation is
// reported as a non-error cancelled result carrying cancelledText; all other
// failures become error results, with failureTitle used for transport and
// decoding errors.
func FromCallError(ctx context.Context, err error, failureTitle, cancelledText string) toolbox.Result {
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return toolbox.Cancelled(cancelledText)
	case errors.Is(err, apiclient.ErrUnauthorized):
		return toolbox.NewErrorResult(
			"Authentication failed",
			"Invalid API key. Use /minimax-configure to update your credentials.",
		)
	case errors.As(err, &apiErr):
		msg := apiErr.Body
		if strings.TrimSpace(msg) == "" {
			msg = "Unknown error occurred"
		}

		return toolbox.NewErrorResult(fmt.Sprintf("API error (%d)", apiErr.StatusCode), msg)
	default:
		return toolbox.NewErrorResult(failureTitle, err.Error())
	}
}

func stringField(obj map[string]any, key, fallback string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}

	return fallback
}

// NotConfigured is the result returned by every tool when the session has no
// usable key.
func NotConfigured() toolbox.Result {
	return toolbox.NewErrorResult(
		"MiniMax API key not configured",
		"Use /minimax-configure to set your API key, or set MINIMAX_API_KEY environment variable",
	)
}
