package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// ToolBox orchestrates a collection of tools. It allows registering, retrieving,
// listing, and calling tools. Hosts use ToolBox to execute tool calls.
type ToolBox struct {
	tools map[string]Tool
}

// Call is a single tool invocation request from the host.
type Call struct {
	ID        string
	Name      string
	Arguments string
}

// New creates a new ToolBox ready for use.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools to the ToolBox. If a tool with the same name
// already exists, it is replaced.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from another ToolBox into this one. If a tool
// with the same name already exists, it is replaced.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, t := range other.tools {
		tb.tools[t.Name] = t
	}
}

// Tools returns all registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Call executes a tool call and returns its Result. An unknown tool name yields
// an error result.
func (tb *ToolBox) Call(ctx context.Context, tc Call, onUpdate UpdateFunc) Result {
	t, ok := tb.tools[tc.Name]
	if !ok {
		return NewErrorResult("Unknown tool", fmt.Sprintf("tool not found: %s", tc.Name))
	}

	args := tc.Arguments
	if args == "" {
		args = "{}"
	}

	return t.Handler(ctx, json.RawMessage(args), onUpdate)
}
