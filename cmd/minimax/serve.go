package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/germanamz/minimax/pkg/engine"
	"github.com/germanamz/minimax/pkg/tools/mcpserver"
	"github.com/germanamz/minimax/pkg/tools/toolbox"
)

const shutdownTimeout = 5 * time.Second

func runServe(g globalFlags, httpAddr string) error {
	cfg, log, err := setup(g)
	if err != nil {
		return err
	}

	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}

	// stdin may be the transport, so there is nobody to confirm expensive
	// analyses; the MCP client is expected to gate its own calls.
	eng, err := engine.New(engine.Options{Config: cfg, Logger: log})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sub := eng.Events().Subscribe(64)
	defer eng.Events().Unsubscribe(sub)

	go logEvents(sub, log)

	srv := newMCPServer(eng, log)

	if cfg.Server.HTTPAddr == "" {
		log.Info("mcp server starting", "transport", "stdio", "tools", eng.ToolNames())
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	}

	return serveHTTP(ctx, cfg.Server.HTTPAddr, srv.HTTPHandler(), log)
}

// newMCPServer exposes the engine's tools over MCP, routing every call
// through the engine so events and logs are emitted.
func newMCPServer(eng *engine.Engine, log *slog.Logger) *mcpserver.MCPServer {
	cfg := eng.Config()

	srv := mcpserver.New(cfg.Server.Name, cfg.Server.Version,
		mcpserver.WithCaller(eng.Call),
		mcpserver.WithLogger(log),
	)
	srv.Register(eng.Tools().Tools()...)

	return srv
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("mcp server starting", "transport", "http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("mcp server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}
}

// logEvents traces tool call starts and command runs until sub is closed.
func logEvents(sub *engine.Subscription, log *slog.Logger) {
	for e := range sub.C {
		switch e.Kind {
		case engine.EventToolCallStart:
			if tc, ok := e.Data.(toolbox.Call); ok {
				log.Debug("tool call start", "id", e.CallID, "tool", e.Name, "args", truncate(tc.Arguments, 200))
			}
		case engine.EventToolCallEnd:
			if r, ok := e.Data.(toolbox.Result); ok && r.IsError {
				log.Warn("tool call failed", "id", e.CallID, "tool", e.Name, "error", truncate(r.Text(), 200))
			}
		}
	}
}
