package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Completion sentinels. Both are accepted as equally valid; a command
// whose output starts with either one submits the rest of the output as
// the final answer.
const (
	sentinelLegacy  = "MINI_SWE_AGENT_FINAL_OUTPUT"
	sentinelCurrent = "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT"
)

// Output is the normalized result of an executed action. Output is
// always text by the time it leaves the executor; binary payloads are
// decoded before this point.
type Output struct {
	Output     string `json:"output"`
	ReturnCode int    `json:"return_code"`
}

// executeAction runs the action through the environment capability and
// owns three post-processing concerns: byte-output normalization,
// timeout classification, and completion detection.
func (a *Agent) executeAction(ctx context.Context, action *Action) (*Output, Outcome, error) {
	result, err := a.env.Execute(ctx, action.Command)
	if err != nil {
		var timeout *CommandTimeoutError
		switch {
		case errors.As(err, &timeout):
			// Command-level timeout: recover whatever partial output was
			// captured before the kill.
			outcome, rerr := a.timeoutOutcome(action, a.decodeBytes(timeout.Partial))
			return nil, outcome, rerr
		case errors.Is(err, context.DeadlineExceeded):
			// Generic deadline with no output to recover.
			outcome, rerr := a.timeoutOutcome(action, "")
			return nil, outcome, rerr
		default:
			return nil, Outcome{}, fmt.Errorf("execute action: %w", err)
		}
	}

	out := &Output{
		Output:     a.decodeBytes(result.Output),
		ReturnCode: result.ReturnCode,
	}

	if final, ok := splitFinalOutput(out.Output); ok {
		return out, Terminal(KindSubmitted, final), nil
	}
	return out, Outcome{}, nil
}

// timeoutOutcome renders the timeout template into a recoverable
// outcome. The split return shape keeps render failures fatal.
func (a *Agent) timeoutOutcome(action *Action, partial string) (Outcome, error) {
	msg, err := a.Render(a.config.TimeoutTemplate, map[string]any{
		"action": action.Command,
		"output": partial,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Recoverable(KindExecutionTimeout, msg), nil
}

// splitFinalOutput reports whether the output declares task completion.
// The first non-blank line must equal one of the sentinels; everything
// after that line, original line terminators included, is the submitted
// answer. A line ends at \n, \r, \r\n, \v or \f, so carriage-return
// output from terminal-oriented tools still submits.
func splitFinalOutput(output string) (string, bool) {
	trimmed := strings.TrimLeft(output, " \t\r\n\v\f")
	if trimmed == "" {
		return "", false
	}
	end := len(trimmed)
	rest := ""
	if i := strings.IndexAny(trimmed, "\n\r\v\f"); i >= 0 {
		end = i
		next := i + 1
		if trimmed[i] == '\r' && next < len(trimmed) && trimmed[next] == '\n' {
			next++
		}
		rest = trimmed[next:]
	}
	first := strings.TrimSpace(trimmed[:end])
	if first != sentinelLegacy && first != sentinelCurrent {
		return "", false
	}
	return rest, true
}
