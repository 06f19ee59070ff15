package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/germanamz/minimax/pkg/engine"
	"github.com/germanamz/minimax/pkg/minimax/configure"
	"github.com/germanamz/minimax/pkg/minimax/vision"
	"github.com/germanamz/minimax/pkg/minimax/websearch"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
	"github.com/google/uuid"
)

const shellHelp = `Commands:
  search <query>                 Search the web
  image <image_url> <prompt>     Analyze an image
  /minimax-configure [options]   Configure the API key (see --help)
  /minimax-status                Show configuration status
  /help                          Show this help
  quit                           Exit`

// shell is the interactive line-based frontend. Each tool call runs under its
// own context so an interrupt cancels the request in flight, not the shell.
type shell struct {
	eng *engine.Engine
	ui  configure.UI
	out io.Writer

	// callContext derives the context of a single tool call.
	callContext func(context.Context) (context.Context, context.CancelFunc)
}

func newShell(eng *engine.Engine, ui configure.UI, out io.Writer) *shell {
	return &shell{
		eng: eng,
		ui:  ui,
		out: out,
		callContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

func runShell(g globalFlags) error {
	cfg, log, err := setup(g)
	if err != nil {
		return err
	}

	// Interrupts belong to the call in flight; at the prompt they end the
	// process as usual.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	ui := newTermUI(os.Stdout)

	eng, err := engine.New(engine.Options{
		Config:  cfg,
		Confirm: ui.Confirm,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	initMarkdownRenderer(100)

	sh := newShell(eng, ui, os.Stdout)
	eng.SessionStart(ui)

	return sh.run(ctx, os.Stdin)
}

// run reads lines from in until EOF, "quit", or ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(s.out, promptStyle.Render("minimax> "))

		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		if s.handle(ctx, scanner.Text()) {
			return nil
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// handle executes one input line. It reports true when the shell should exit.
func (s *shell) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch {
	case line == "":
	case verb == "quit" || verb == "exit":
		return true
	case verb == "/help":
		fmt.Fprintln(s.out, shellHelp)
	case strings.HasPrefix(verb, "/"):
		if !s.eng.RunCommand(ctx, line, s.ui) {
			s.ui.Notify(fmt.Sprintf("Unknown command %s. Type /help for a list.", verb), configure.LevelError)
		}
	case verb == "search":
		s.call(ctx, websearch.ToolName, websearch.Params{Query: rest})
	case verb == "image":
		imageURL, prompt, _ := strings.Cut(rest, " ")
		s.call(ctx, vision.ToolName, vision.Params{ImageURL: imageURL, Prompt: strings.TrimSpace(prompt)})
	default:
		fmt.Fprintln(s.out, dimStyle.Render("Type /help for a list of commands."))
	}

	return false
}

func (s *shell) call(ctx context.Context, name string, params any) {
	args, err := json.Marshal(params)
	if err != nil {
		s.ui.Notify(err.Error(), configure.LevelError)
		return
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	tc := toolbox.Call{ID: uuid.NewString(), Name: name, Arguments: string(args)}

	fmt.Fprintln(s.out, formatCall(tc))

	result := s.eng.Call(callCtx, tc, func(u toolbox.Update) {
		fmt.Fprintln(s.out, progressStyle.Render(treeCorner+u.Text))
	})

	fmt.Fprintln(s.out, formatResult(result))
}

// formatCall renders the one-line header of a tool call.
func formatCall(tc toolbox.Call) string {
	return toolNameStyle.Render(tc.Name) + " " + dimStyle.Render(truncate(tc.Arguments, 80))
}

// formatResult renders a tool result for the terminal.
func formatResult(r toolbox.Result) string {
	switch r.Status() {
	case toolbox.StatusError:
		return errorBlockStyle.Render(r.Text())
	case toolbox.StatusCancelled:
		return cancelledStyle.Render(r.Text())
	default:
		return renderMarkdown(r.Text())
	}
}
