// Package vision provides the understand_image tool, backed by the MiniMax
// Coding Plan image understanding endpoint. Prompts that look expensive are
// confirmed with the user before any request is made.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/minimax/format"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
)

// ToolName is the name the tool is registered under.
const ToolName = "understand_image"

// Parameter length bounds, in characters.
const (
	MaxPromptLen   = 1000
	MaxImageURLLen = 2000
)

// DefaultLongPrompt is the prompt length above which an analysis is
// confirmed even without a keyword match.
const DefaultLongPrompt = 200

var (
	imageURLPattern  = regexp.MustCompile(`^(https?://.+|\.{0,2}/.+)`)
	expensivePattern = regexp.MustCompile(`(?i)describe|analyze|extract|recognize`)
)

// ConfirmFunc asks the user a yes/no question and blocks until answered.
type ConfirmFunc func(ctx context.Context, title, message string) (bool, error)

// Params are the tool's input parameters.
type Params struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
}

// Details describes an analysis in progress or completed.
type Details struct {
	State    toolbox.Status `json:"status"`
	Prompt   string         `json:"prompt,omitempty"`
	ImageURL string         `json:"imageUrl,omitempty"`
	Raw      any            `json:"raw,omitempty"`
}

// Status implements toolbox.Details.
func (d Details) Status() toolbox.Status { return d.State }

// Options tune the confirmation gate.
type Options struct {
	// Confirm is asked before expensive analyses. A nil Confirm skips the gate.
	Confirm ConfirmFunc
	// LongPrompt overrides DefaultLongPrompt when positive.
	LongPrompt int
	Logger     *slog.Logger
}

// Vision executes image analyses for one session.
type Vision struct {
	session    *session.Session
	client     *apiclient.Client
	confirm    ConfirmFunc
	longPrompt int
	log        *slog.Logger
}

// New creates a Vision.
func New(sess *session.Session, client *apiclient.Client, opts Options) *Vision {
	v := &Vision{
		session:    sess,
		client:     client,
		confirm:    opts.Confirm,
		longPrompt: opts.LongPrompt,
		log:        opts.Logger,
	}

	if v.longPrompt <= 0 {
		v.longPrompt = DefaultLongPrompt
	}

	if v.log == nil {
		v.log = slog.New(slog.DiscardHandler)
	}

	return v
}

// Tools returns a ToolBox containing the understand_image tool.
func (v *Vision) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(v.Tool())

	return tb
}

// Tool returns the understand_image tool definition.
func (v *Vision) Tool() toolbox.Tool {
	return toolbox.Tool{
		Name:  ToolName,
		Label: "Understand Image",
		Description: `Analyze and understand image content using AI.

Usage:
- understand_image({ prompt: "What is in this image?", image_url: "https://example.com/screenshot.png" })
- understand_image({ prompt: "Extract text from this image (OCR)", image_url: "/path/to/local/image.jpg" })

Supported formats: JPEG, PNG, GIF, WebP (max 20MB)`,
		InputSchema: json.RawMessage(`{"type":"object","properties":{"prompt":{"type":"string","description":"Question or analysis request for the image","minLength":1,"maxLength":1000},"image_url":{"type":"string","description":"Image source - HTTP/HTTPS URL or local file path","minLength":1,"maxLength":2000}},"required":["prompt","image_url"]}`),
		Handler:     v.handle,
	}
}

func (v *Vision) handle(ctx context.Context, input json.RawMessage, onUpdate toolbox.UpdateFunc) toolbox.Result {
	var p Params
	if err := json.Unmarshal(input, &p); err != nil {
		return toolbox.NewErrorResult("Invalid input", err.Error())
	}

	return v.Execute(ctx, p, onUpdate)
}

// ValidateImageURL reports whether s is an http(s) URL or a local path
// starting with "/", "./" or "../".
func ValidateImageURL(s string) bool {
	return imageURLPattern.MatchString(s)
}

// IsExpensive reports whether prompt should be confirmed before analysis.
func (v *Vision) IsExpensive(prompt string) bool {
	return expensivePattern.MatchString(prompt) || utf8.RuneCountInString(prompt) > v.longPrompt
}

// Execute runs one analysis. It never returns a Go error; every outcome is a
// Result.
func (v *Vision) Execute(ctx context.Context, p Params, onUpdate toolbox.UpdateFunc) toolbox.Result {
	if !v.session.Configured() {
		return format.NotConfigured()
	}

	if p.Prompt == "" || p.ImageURL == "" {
		return toolbox.NewErrorResult("Missing parameters", "Both 'prompt' and 'image_url' are required")
	}

	if utf8.RuneCountInString(p.Prompt) > MaxPromptLen || utf8.RuneCountInString(p.ImageURL) > MaxImageURLLen {
		return toolbox.NewErrorResult(
			"Invalid parameters",
			fmt.Sprintf("'prompt' must be at most %d and 'image_url' at most %d characters long", MaxPromptLen, MaxImageURLLen),
		)
	}

	if !ValidateImageURL(p.ImageURL) {
		return toolbox.NewErrorResult(
			"Invalid image URL",
			"Image URL must be an HTTP/HTTPS URL or a local file path starting with / or ./",
		)
	}

	if v.confirm != nil && v.IsExpensive(p.Prompt) {
		ok, err := v.confirm(ctx, "Analyze Image?",
			fmt.Sprintf("This analysis may take time. Continue with: %q?", format.Truncate(p.Prompt, 50)))
		if err != nil || !ok {
			v.log.Debug("understand_image declined", "error", err)
			return toolbox.Cancelled("Analysis cancelled")
		}
	}

	onUpdate.Emit(toolbox.Update{
		Text:    "🖼 Analyzing image...",
		Details: Details{State: toolbox.StatusAnalyzing},
	})

	payload, err := v.client.PostJSON(ctx, apiclient.PathUnderstandImage, p)
	if err != nil {
		v.log.Debug("understand_image failed", "image_url", p.ImageURL, "error", err)
		return format.FromCallError(ctx, err, "Analysis failed", "Analysis cancelled")
	}

	text, ok := analysisText(payload)
	if !ok {
		text = format.CompactJSON(payload)
	}

	return toolbox.Result{
		Content: toolbox.TextBlocks(text),
		Details: Details{
			State:    toolbox.StatusComplete,
			Prompt:   p.Prompt,
			ImageURL: p.ImageURL,
			Raw:      payload,
		},
	}
}

func analysisText(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}

	s, ok := obj["analysis"].(string)

	return s, ok
}
