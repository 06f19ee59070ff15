package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/germanamz/minimax/pkg/tools/toolbox"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallFunc executes a tool call on behalf of the server.
type CallFunc func(ctx context.Context, tc toolbox.Call, onUpdate toolbox.UpdateFunc) toolbox.Result

// MCPServer serves tools over the MCP protocol using the official MCP Go SDK.
type MCPServer struct {
	server *mcp.Server
	call   CallFunc
	log    *slog.Logger
}

// Option customizes an MCPServer.
type Option func(*MCPServer)

// WithCaller routes every tool call through call instead of invoking the
// tool's handler directly.
func WithCaller(call CallFunc) Option {
	return func(s *MCPServer) { s.call = call }
}

// WithLogger sets the logger used for progress and call tracing.
func WithLogger(log *slog.Logger) Option {
	return func(s *MCPServer) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a new MCPServer with the given name and version.
func New(name, version string, opts ...Option) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	s := &MCPServer{server: server, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}

	return s
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(t))
	}
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// HTTPHandler returns a router serving the MCP streamable HTTP transport at
// /mcp and a liveness check at /healthz.
func (s *MCPServer) HTTPHandler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/mcp", mcpHandler)

	return r
}

// run starts the server with the given transport. Exported via Serve for
// production use; called directly by tests with InMemoryTransport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// toSDKTool converts a toolbox.Tool to an SDK *mcp.Tool.
func toSDKTool(t toolbox.Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Title:       t.Label,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// toSDKHandler wraps a toolbox tool as an SDK ToolHandler. Tool failures are
// reported in-band with IsError rather than as protocol errors.
func (s *MCPServer) toSDKHandler(t toolbox.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		tc := toolbox.Call{ID: uuid.NewString(), Name: t.Name, Arguments: string(args)}

		onUpdate := func(u toolbox.Update) {
			s.log.Debug("mcp tool progress", "id", tc.ID, "tool", tc.Name, "text", u.Text)
		}

		var result toolbox.Result
		if s.call != nil {
			result = s.call(ctx, tc, onUpdate)
		} else {
			result = t.Handler(ctx, args, onUpdate)
		}

		return toSDKResult(result), nil
	}
}

// toSDKResult converts a toolbox.Result to an SDK *mcp.CallToolResult.
func toSDKResult(r toolbox.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(r.Content))
	for _, b := range r.Content {
		content = append(content, &mcp.TextContent{Text: b.Text})
	}

	return &mcp.CallToolResult{
		Content: content,
		IsError: r.IsError,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
