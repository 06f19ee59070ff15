// Package engine is the composition root of the MiniMax integration. It
// resolves credentials once, owns the session configuration, and wires the
// web_search and understand_image tools and the configuration commands to it.
// Frontends (the interactive shell, the MCP server) interact with Engine,
// observe tool activity through an EventBus, and never construct lower-level
// packages directly.
package engine
