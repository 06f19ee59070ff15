package toolbox

import (
	"fmt"
	"strings"
)

// Status tags the phase or outcome carried by a tool's Details.
type Status string

const (
	StatusSearching Status = "searching"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Details is the structured side of a tool result. Each variant reports its
// own Status; tools define variants for their in-progress and complete
// payloads, while ErrorDetails and CancelledDetails are shared.
type Details interface {
	Status() Status
}

// ErrorDetails describes a failed invocation.
type ErrorDetails struct {
	Error string `json:"error"`
}

// Status implements Details.
func (ErrorDetails) Status() Status { return StatusError }

// CancelledDetails describes an invocation stopped by the caller or declined
// by the user.
type CancelledDetails struct{}

// Status implements Details.
func (CancelledDetails) Status() Status { return StatusCancelled }

// Block is a single text content block of a result.
type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the terminal value of one tool invocation.
type Result struct {
	Content []Block
	Details Details
	IsError bool
}

// Text joins the text of all content blocks with newlines.
func (r Result) Text() string {
	texts := make([]string, 0, len(r.Content))
	for _, b := range r.Content {
		texts = append(texts, b.Text)
	}

	return strings.Join(texts, "\n")
}

// Status returns the status of the result's details, or StatusError when the
// result carries no details.
func (r Result) Status() Status {
	if r.Details == nil {
		return StatusError
	}

	return r.Details.Status()
}

// TextBlocks wraps text as a single text content block.
func TextBlocks(text string) []Block {
	return []Block{{Type: "text", Text: text}}
}

// NewErrorResult builds the uniform error result used by every failure path.
func NewErrorResult(title, message string) Result {
	return Result{
		Content: TextBlocks(fmt.Sprintf("Error: %s\n%s", title, message)),
		Details: ErrorDetails{Error: fmt.Sprintf("%s: %s", title, message)},
		IsError: true,
	}
}

// Cancelled builds a non-error result for an invocation that did not run to
// completion because it was cancelled or declined.
func Cancelled(text string) Result {
	return Result{
		Content: TextBlocks(text),
		Details: CancelledDetails{},
	}
}
