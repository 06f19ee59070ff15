// Package tools provides the tool contract and MCP (Model Context Protocol) exposure.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/minimax/pkg/tools/toolbox] — Tool and Result types, and the ToolBox for registering, listing, and calling tools
//   - [github.com/germanamz/minimax/pkg/tools/mcpserver] — MCP server using the official MCP Go SDK for exposing tools over stdio or streamable HTTP
//
// The toolbox sub-package is the foundation layer. The mcpserver package is a
// thin wrapper around the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk) that maps toolbox results onto MCP
// tool results.
package tools
