package agent

import (
	"context"
	"fmt"
)

// Response is what the model capability returns for one query. Content
// holds the assistant text; Extra carries any additional fields the
// provider returned (response id, usage, reasoning, ...) which are kept
// on the recorded assistant message.
type Response struct {
	Content string         `json:"content"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Model is the language model capability consumed by the agent. A Model
// may be shared between concurrent runs provided it is safe for
// concurrent use; the agent only ever reads its counters.
type Model interface {
	// Query sends the full conversation and returns the next response.
	Query(ctx context.Context, messages []Message) (*Response, error)

	// NCalls returns the cumulative number of queries made. Monotonically
	// non-decreasing.
	NCalls() int

	// Cost returns the cumulative cost in dollars. Monotonically
	// non-decreasing.
	Cost() float64

	// TemplateVars returns model-specific variables for message templates.
	TemplateVars() map[string]string
}

// ExecResult is the raw result of running a command. Output may contain
// arbitrary bytes in whatever encoding the command produced; the agent
// normalizes it to text before it enters the conversation.
type ExecResult struct {
	Output     []byte `json:"output"`
	ReturnCode int    `json:"return_code"`
}

// Environment is the command execution capability consumed by the agent.
type Environment interface {
	// Execute runs a shell command and returns its combined output.
	// A command that hits the environment's own deadline returns a
	// *CommandTimeoutError carrying whatever output was captured; a
	// cancelled or expired ctx surfaces as ctx.Err().
	Execute(ctx context.Context, command string) (*ExecResult, error)

	// TemplateVars returns environment-specific variables for message
	// templates.
	TemplateVars() map[string]string
}

// CommandTimeoutError is returned by an Environment when a command
// exceeded its execution deadline and was killed. Partial holds the raw
// bytes captured before the kill, possibly empty.
type CommandTimeoutError struct {
	Command string
	Partial []byte
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("command timed out: %s", e.Command)
}
