// Package configure implements the /minimax-configure and /minimax-status
// commands. Every write to the session is confirmed by the user first;
// declining is a no-op.
package configure

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/germanamz/minimax/pkg/minimax/session"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// UI is the subset of host interaction a command needs. Confirm and Input
// block until the user answers.
type UI interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
	Input(ctx context.Context, title, placeholder string) (string, error)
	Notify(message string, level Level)
}

// Completion is a single argument completion.
type Completion struct {
	Value string
	Label string
}

// Command is a host command.
type Command struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, args string, ui UI)
	Complete    func(prefix string) []Completion
}

// Command names.
const (
	ConfigureName = "minimax-configure"
	StatusName    = "minimax-status"
)

const helpText = `/minimax-configure [options]

Options:
  --key <api_key>    Set API key directly
  --clear            Clear configured API key
  --show             Show current configuration status
  --help, -h         Show this help message

Environment variables:
  MINIMAX_API_KEY    Your MiniMax Coding Plan API key
  MINIMAX_API_HOST   API endpoint (default: https://api.minimax.io)

Get your API key:
  https://platform.minimax.io/subscribe/coding-plan`

const inputMessage = `Enter your MiniMax Coding Plan API key.

To get an API key:
1. Visit https://platform.minimax.io/subscribe/coding-plan
2. Subscribe to a plan
3. Copy your API key from the dashboard

Your API key will only be stored in memory during this session.`

var (
	keyPattern  = regexp.MustCompile(`(?i)--key[=:\s]+(\S+)`)
	completions = []string{"--help", "--show", "--clear", "--key "}
)

// Handler runs the configuration commands against one session.
type Handler struct {
	session *session.Session
	tools   []string
}

// New creates a Handler. tools lists the tool names reported by the status
// command.
func New(sess *session.Session, tools ...string) *Handler {
	return &Handler{session: sess, tools: tools}
}

// Commands returns the configure and status commands.
func (h *Handler) Commands() []Command {
	return []Command{
		{
			Name:        ConfigureName,
			Description: "Configure MiniMax API key for MCP tools",
			Handler:     h.Configure,
			Complete:    Complete,
		},
		{
			Name:        StatusName,
			Description: "Show MiniMax MCP configuration status",
			Handler:     h.Status,
		},
	}
}

// Complete returns the recognized flags starting with prefix.
func Complete(prefix string) []Completion {
	var out []Completion
	for _, opt := range completions {
		if strings.HasPrefix(opt, prefix) {
			out = append(out, Completion{Value: opt, Label: opt})
		}
	}

	return out
}

// Configure handles /minimax-configure. Flags are checked in order and the
// first match wins.
func (h *Handler) Configure(ctx context.Context, args string, ui UI) {
	fields := strings.Fields(args)

	switch {
	case hasFlag(fields, "--help", "-h"):
		ui.Notify(helpText, LevelInfo)
	case hasFlag(fields, "--show"):
		ui.Notify(h.showText(), LevelInfo)
	case hasFlag(fields, "--clear"):
		h.clear(ctx, ui)
	default:
		if m := keyPattern.FindStringSubmatch(args); m != nil {
			h.saveKey(ctx, ui, m[1], fmt.Sprintf("Key: %s", session.MaskKey(m[1])), "✓ MiniMax API key saved")
			return
		}

		h.prompt(ctx, ui)
	}
}

// Status handles /minimax-status.
func (h *Handler) Status(_ context.Context, _ string, ui UI) {
	st := h.session.Snapshot()
	if !st.Configured {
		ui.Notify("✗ MiniMax MCP not configured\n\nUse /minimax-configure to set up your API key", LevelWarning)
		return
	}

	lines := []string{
		"✓ MiniMax MCP Configured",
		"",
		"API Host: " + st.APIHost,
		"API Key: " + session.MaskKey(st.APIKey),
		"",
		"Available tools:",
	}
	for _, t := range h.tools {
		lines = append(lines, "  • "+t)
	}

	ui.Notify(strings.Join(lines, "\n"), LevelInfo)
}

func (h *Handler) showText() string {
	st := h.session.Snapshot()
	if !st.Configured {
		return "✗ Not configured"
	}

	return fmt.Sprintf("✓ Configured\nAPI Host: %s\nKey: %s", st.APIHost, session.MaskKey(st.APIKey))
}

func (h *Handler) clear(ctx context.Context, ui UI) {
	ok, err := ui.Confirm(ctx, "Clear MiniMax Configuration", "This will remove your API key from the current session.")
	if err != nil || !ok {
		return
	}

	h.session.Clear()
	ui.Notify("✓ Configuration cleared", LevelInfo)
}

func (h *Handler) prompt(ctx context.Context, ui UI) {
	key, err := ui.Input(ctx, "MiniMax API Key:", inputMessage)
	key = strings.TrimSpace(key)

	if err != nil || key == "" {
		ui.Notify("Configuration cancelled", LevelWarning)
		return
	}

	h.saveKey(ctx, ui, key, "Save this API key for the current session?", "✓ MiniMax API key configured")
}

func (h *Handler) saveKey(ctx context.Context, ui UI, key, message, done string) {
	ok, err := ui.Confirm(ctx, "Save MiniMax API Key?", message)
	if err != nil || !ok {
		return
	}

	h.session.SetKey(key)
	ui.Notify(done, LevelInfo)
}

func hasFlag(fields []string, flags ...string) bool {
	for _, f := range fields {
		for _, want := range flags {
			if f == want {
				return true
			}
		}
	}

	return false
}
