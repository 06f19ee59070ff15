package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/germanamz/minimax/pkg/engine"
	"github.com/germanamz/minimax/pkg/minimax/credentials"
	"github.com/germanamz/minimax/pkg/minimax/session"
)

const doctorTimeout = 15 * time.Second

func runDoctor(g globalFlags, out io.Writer) error {
	cfg, log, err := setup(g)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.Options{Config: cfg, Logger: log})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, doctorTimeout)
	defer cancelTimeout()

	if failed := doctor(ctx, eng, out); failed > 0 {
		return fmt.Errorf("doctor: %d check(s) failed", failed)
	}

	return nil
}

// doctor prints one line per check and returns the number of failures.
func doctor(ctx context.Context, eng *engine.Engine, out io.Writer) int {
	fmt.Fprintln(out, "MiniMax Doctor")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	failed := 0
	creds := eng.Credentials()

	if creds.Configured {
		printPass(out, "API key", fmt.Sprintf("%s (from %s)", session.MaskKey(creds.APIKey), describeSource(creds.Source)))
	} else {
		printFail(out, "API key", "not found; set "+credentials.EnvAPIKey+" or run /minimax-configure")
		failed++
	}

	printPass(out, "API host", creds.APIHost)

	if !creds.Configured {
		printWarn(out, "API reachability", "skipped")
		return failed
	}

	if eng.Ping(ctx) {
		printPass(out, "API reachability", "key accepted")
	} else {
		printFail(out, "API reachability", "key rejected")
		failed++
	}

	return failed
}

func describeSource(s credentials.Source) string {
	switch s {
	case credentials.SourceEnv:
		return credentials.EnvAPIKey
	case credentials.SourceProject:
		return ".pi/settings.json"
	case credentials.SourceGlobal:
		return "~/.pi/agent/settings.json"
	case credentials.SourceAuth:
		return "~/.pi/agent/auth.json"
	default:
		return string(s)
	}
}

func printPass(out io.Writer, check, detail string) {
	fmt.Fprintf(out, "%s %-18s %s\n", infoStyle.Render("✓"), check, detail)
}

func printWarn(out io.Writer, check, detail string) {
	fmt.Fprintf(out, "%s %-18s %s\n", warningStyle.Render("!"), check, detail)
}

func printFail(out io.Writer, check, detail string) {
	fmt.Fprintf(out, "%s %-18s %s\n", errorStyle.Render("✗"), check, detail)
}
