package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON input. Progress is reported
// through onUpdate, which may be nil. Handlers never return Go errors: every
// failure is folded into the returned Result.
type Handler func(ctx context.Context, input json.RawMessage, onUpdate UpdateFunc) Result

// Tool represents an executable tool with a name, description, JSON Schema, and handler.
type Tool struct {
	Name        string
	Label       string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Update is a progress event emitted by a running tool before its terminal
// Result.
type Update struct {
	Text    string
	Details Details
}

// UpdateFunc receives progress updates from a running tool.
type UpdateFunc func(Update)

// Emit delivers u to f. It is a no-op on a nil UpdateFunc.
func (f UpdateFunc) Emit(u Update) {
	if f != nil {
		f(u)
	}
}
