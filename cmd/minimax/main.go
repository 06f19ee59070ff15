package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/minimax/pkg/engine"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config  string
	env     string
	verbose bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.config, "config", "", "path to configuration file (default: minimax.yaml if present)")
	fs.StringVar(&g.env, "env", ".env", "path to .env file (ignored if missing)")
	fs.BoolVar(&g.verbose, "verbose", false, "enable debug logging")
}

func main() {
	var g globalFlags

	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
			serveCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: minimax serve [flags]\n\nServe web_search and understand_image over MCP (stdio unless -http is set).\n\nFlags:\n")
				serveCmd.PrintDefaults()
			}
			g.register(serveCmd)
			httpAddr := serveCmd.String("http", "", "serve streamable HTTP on this address instead of stdio")
			_ = serveCmd.Parse(os.Args[2:])

			exit(runServe(g, *httpAddr))

			return
		case "doctor":
			doctorCmd := flag.NewFlagSet("doctor", flag.ExitOnError)
			doctorCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: minimax doctor [flags]\n\nCheck credentials and API reachability.\n\nFlags:\n")
				doctorCmd.PrintDefaults()
			}
			g.register(doctorCmd)
			_ = doctorCmd.Parse(os.Args[2:])

			exit(runDoctor(g, os.Stdout))

			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: minimax [flags]\n       minimax <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  serve   Serve the tools over MCP\n  doctor  Check credentials and API reachability\n")
	}

	g.register(flag.CommandLine)
	flag.Parse()

	exit(runShell(g))
}

func exit(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the .env file and config, and builds the logger shared by every
// subcommand. Logs go to stderr so stdout stays free for MCP stdio.
func setup(g globalFlags) (engine.Config, *slog.Logger, error) {
	if err := loadDotEnv(g.env); err != nil {
		return engine.Config{}, nil, err
	}

	cfg, err := loadConfig(resolveConfigPath(g.config), g.config != "")
	if err != nil {
		return engine.Config{}, nil, err
	}

	if g.verbose {
		cfg.LogLevel = "debug"
	}

	log, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return engine.Config{}, nil, err
	}

	return cfg, log, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := engine.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
