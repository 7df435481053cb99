package agent

import (
	"regexp"
	"strings"
)

// actionPattern matches one fenced shell block: an opening ```bash tag,
// a non-greedy multiline body, and a closing fence.
var actionPattern = regexp.MustCompile("(?s)```bash\\s*\n(.*?)\n```")

// Action is one shell command extracted from a model response.
type Action struct {
	Command  string
	Response *Response
}

// parseAction extracts exactly one shell command from the response.
// Zero matches and two-or-more matches are both rejected; ambiguity is
// never resolved by picking the first. The rejection message is rendered
// from the format-error template, parameterized with the candidates that
// were found, so the model sees concrete guidance.
func (a *Agent) parseAction(resp *Response) (*Action, Outcome, error) {
	var candidates []string
	for _, m := range actionPattern.FindAllStringSubmatch(resp.Content, -1) {
		candidates = append(candidates, m[1])
	}
	if len(candidates) == 1 {
		return &Action{Command: strings.TrimSpace(candidates[0]), Response: resp}, Outcome{}, nil
	}

	msg, err := a.Render(a.config.FormatErrorTemplate, map[string]any{"actions": candidates})
	if err != nil {
		return nil, Outcome{}, err
	}
	return nil, Recoverable(KindFormatError, msg), nil
}
