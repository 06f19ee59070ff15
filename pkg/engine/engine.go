package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/germanamz/minimax/pkg/minimax/apiclient"
	"github.com/germanamz/minimax/pkg/minimax/configure"
	"github.com/germanamz/minimax/pkg/minimax/credentials"
	"github.com/germanamz/minimax/pkg/minimax/session"
	"github.com/germanamz/minimax/pkg/minimax/vision"
	"github.com/germanamz/minimax/pkg/minimax/websearch"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
)

// Options configure an Engine.
type Options struct {
	Config   Config
	Resolver credentials.Resolver
	// HTTPClient is used for remote API calls. Nil uses a default client.
	HTTPClient *http.Client
	// Confirm gates expensive image analyses. Nil disables the gate.
	Confirm vision.ConfirmFunc
	Logger  *slog.Logger
}

// Engine is the composition root that assembles the session, tools, and
// commands, and exposes them through a frontend-agnostic API.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	events   *EventBus
	creds    credentials.Credentials
	session  *session.Session
	client   *apiclient.Client
	tools    *toolbox.ToolBox
	commands map[string]configure.Command
}

// New creates an Engine. It validates the config, resolves credentials once,
// and injects the resulting session into every tool and command.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	creds := opts.Resolver.Resolve()
	sess := session.New(creds)
	client := apiclient.New(sess, apiclient.WithHTTPClient(opts.HTTPClient), apiclient.WithLogger(log))

	e := &Engine{
		cfg:      opts.Config,
		log:      log,
		events:   NewEventBus(),
		creds:    creds,
		session:  sess,
		client:   client,
		tools:    toolbox.New(),
		commands: make(map[string]configure.Command),
	}

	confirm := opts.Confirm
	if !opts.Config.ConfirmExpensive() {
		confirm = nil
	}

	e.tools.Merge(websearch.New(sess, client, log).Tools())
	e.tools.Merge(vision.New(sess, client, vision.Options{
		Confirm:    confirm,
		LongPrompt: opts.Config.Vision.LongPromptThreshold,
		Logger:     log,
	}).Tools())

	for _, c := range configure.New(sess, e.ToolNames()...).Commands() {
		e.commands[c.Name] = c
	}

	log.Info("minimax engine ready", "configured", creds.Configured, "source", creds.Source, "host", creds.APIHost)

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Events returns the engine's event bus.
func (e *Engine) Events() *EventBus { return e.events }

// Session returns the session configuration shared by tools and commands.
func (e *Engine) Session() *session.Session { return e.session }

// Credentials returns the credentials resolved at startup.
func (e *Engine) Credentials() credentials.Credentials { return e.creds }

// Tools returns the registered tools.
func (e *Engine) Tools() *toolbox.ToolBox { return e.tools }

// ToolNames returns the names of the registered tools, sorted.
func (e *Engine) ToolNames() []string {
	tools := e.tools.Tools()

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}

	return names
}

// Call executes a tool call, forwarding progress to onUpdate and publishing
// start, progress, and end events.
func (e *Engine) Call(ctx context.Context, tc toolbox.Call, onUpdate toolbox.UpdateFunc) toolbox.Result {
	e.publish(EventToolCallStart, tc.ID, tc.Name, tc)

	start := time.Now()

	result := e.tools.Call(ctx, tc, func(u toolbox.Update) {
		e.publish(EventToolProgress, tc.ID, tc.Name, u)
		onUpdate.Emit(u)
	})

	e.log.Info("tool call",
		"id", tc.ID,
		"tool", tc.Name,
		"status", result.Status(),
		"is_error", result.IsError,
		"duration", time.Since(start),
	)
	e.publish(EventToolCallEnd, tc.ID, tc.Name, result)

	return result
}

// Command returns the command registered under name. A leading "/" is
// ignored.
func (e *Engine) Command(name string) (configure.Command, bool) {
	c, ok := e.commands[strings.TrimPrefix(name, "/")]
	return c, ok
}

// Commands returns all commands sorted by name.
func (e *Engine) Commands() []configure.Command {
	out := make([]configure.Command, 0, len(e.commands))
	for _, c := range e.commands {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// RunCommand dispatches a "/name args" line to its command. It reports false
// when the line does not name a registered command.
func (e *Engine) RunCommand(ctx context.Context, line string, ui configure.UI) bool {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")

	c, ok := e.Command(name)
	if !ok || !strings.HasPrefix(name, "/") {
		return false
	}

	e.publish(EventCommand, "", c.Name, args)
	c.Handler(ctx, strings.TrimSpace(args), ui)

	return true
}

// SessionStart announces whether the tools are usable.
func (e *Engine) SessionStart(ui configure.UI) {
	if e.session.Configured() {
		ui.Notify(fmt.Sprintf("✓ MiniMax MCP tools available (%s)", strings.Join(e.ToolNames(), ", ")), configure.LevelInfo)
		return
	}

	ui.Notify("⚠ MiniMax API key not configured. Use /minimax-configure", configure.LevelWarning)
}

// Ping probes the remote API with the current key.
func (e *Engine) Ping(ctx context.Context) bool {
	return e.client.Ping(ctx)
}

func (e *Engine) publish(kind EventKind, id, name string, data any) {
	e.events.Publish(Event{
		Kind:      kind,
		CallID:    id,
		Name:      name,
		Timestamp: time.Now(),
		Data:      data,
	})
}
