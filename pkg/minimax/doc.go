// Package minimax groups the MiniMax integration.
//
//   - [github.com/germanamz/minimax/pkg/minimax/credentials] — API key and host resolution from the environment and settings documents
//   - [github.com/germanamz/minimax/pkg/minimax/session] — mutable session configuration shared by tools and commands
//   - [github.com/germanamz/minimax/pkg/minimax/apiclient] — authenticated JSON transport to the MiniMax API
//   - [github.com/germanamz/minimax/pkg/minimax/format] — result text formatting and error mapping
//   - [github.com/germanamz/minimax/pkg/minimax/websearch] — the web_search tool
//   - [github.com/germanamz/minimax/pkg/minimax/vision] — the understand_image tool
//   - [github.com/germanamz/minimax/pkg/minimax/configure] — the /minimax-configure and /minimax-status commands
package minimax
