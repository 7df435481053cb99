package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Agent drives the task-execution loop. It exclusively owns its
// conversation log and config for the duration of a run; the model and
// environment capabilities are externally owned and only queried.
type Agent struct {
	id           string
	config       Config
	model        Model
	env          Environment
	conversation *Conversation
	detector     Detector
	extraVars    map[string]any
	logger       *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used at loop boundaries.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithDetector overrides the charset detection strategy used to
// normalize command output.
func WithDetector(d Detector) Option {
	return func(a *Agent) { a.detector = d }
}

// New creates an agent with the given model and environment
// capabilities. A nil config uses DefaultConfig.
func New(model Model, env Environment, config *Config, opts ...Option) *Agent {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	a := &Agent{
		id:           uuid.New().String(),
		config:       cfg,
		model:        model,
		env:          env,
		conversation: NewConversation(),
		detector:     NewChardetDetector(),
		extraVars:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Messages returns a copy of the current conversation log.
func (a *Agent) Messages() []Message { return a.conversation.Messages() }

// Run executes one task end-to-end. It resets the conversation, seeds
// the template extras with the task and any caller-supplied context,
// appends the rendered system and instance messages, then drives Step
// until a terminal outcome fires. It returns the outcome's kind name
// and message.
//
// Recoverable outcomes are appended to the conversation as corrective
// user messages and the loop continues. Terminal outcomes are appended
// for audit and end the run. Any other error (a capability failing, a
// template referencing an undefined variable) aborts the run and
// propagates to the caller.
func (a *Agent) Run(ctx context.Context, task string, extra map[string]any) (status, message string, err error) {
	a.conversation = NewConversation()
	a.extraVars = map[string]any{"task": task}
	for k, v := range extra {
		a.extraVars[k] = v
	}

	system, err := a.Render(a.config.SystemTemplate, nil)
	if err != nil {
		return "", "", err
	}
	a.conversation.Append(RoleSystem, system)

	instance, err := a.Render(a.config.InstanceTemplate, nil)
	if err != nil {
		return "", "", err
	}
	a.conversation.Append(RoleUser, instance)

	a.logger.Info("run started", "agent_id", a.id, "task", task)

	for {
		_, outcome, err := a.Step(ctx)
		if err != nil {
			return "", "", err
		}
		switch outcome.Class {
		case ClassRecoverable:
			a.logger.Debug("recoverable step", "kind", outcome.Kind)
			a.conversation.Append(RoleUser, outcome.Message)
		case ClassTerminal:
			a.conversation.Append(RoleUser, outcome.Message)
			a.logger.Info("run finished", "agent_id", a.id, "status", outcome.Kind,
				"n_calls", a.model.NCalls(), "cost", a.model.Cost())
			return outcome.Kind, outcome.Message, nil
		}
	}
}

// Step performs one query -> parse -> execute -> observe cycle. The
// returned Output is an observable side effect record for tracing and
// tests; the loop's control decisions depend only on the outcome.
func (a *Agent) Step(ctx context.Context) (*Output, Outcome, error) {
	resp, outcome, err := a.query(ctx)
	if err != nil || outcome.Class != ClassContinue {
		return nil, outcome, err
	}
	return a.observe(ctx, resp)
}

// query checks both limits, then asks the model for the next response
// and appends it to the conversation. When a limit has been reached the
// model is not called at all.
func (a *Agent) query(ctx context.Context) (*Response, Outcome, error) {
	if a.limitsReached() {
		msg := fmt.Sprintf("limits exceeded: %d model calls (step limit %d), cost $%.4f (cost limit $%.2f)",
			a.model.NCalls(), a.config.StepLimit, a.model.Cost(), a.config.CostLimit)
		return nil, Terminal(KindLimitsExceeded, msg), nil
	}

	resp, err := a.model.Query(ctx, a.conversation.Messages())
	if err != nil {
		return nil, Outcome{}, fmt.Errorf("model query: %w", err)
	}
	a.conversation.AppendResponse(resp)
	return resp, Outcome{}, nil
}

// limitsReached reports whether either run limit has been hit. A limit
// that is zero or negative never triggers.
func (a *Agent) limitsReached() bool {
	if a.config.StepLimit > 0 && a.model.NCalls() >= a.config.StepLimit {
		return true
	}
	if a.config.CostLimit > 0 && a.model.Cost() >= a.config.CostLimit {
		return true
	}
	return false
}

// observe parses and executes the response, then renders and appends
// the observation message.
func (a *Agent) observe(ctx context.Context, resp *Response) (*Output, Outcome, error) {
	action, outcome, err := a.parseAction(resp)
	if err != nil || outcome.Class != ClassContinue {
		return nil, outcome, err
	}

	a.logger.Debug("executing action", "command", action.Command)
	out, outcome, err := a.executeAction(ctx, action)
	if err != nil || outcome.Class != ClassContinue {
		return out, outcome, err
	}

	observation, err := a.Render(a.config.ObservationTemplate, map[string]any{
		"output":     out.Output,
		"returncode": out.ReturnCode,
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	a.conversation.Append(RoleUser, observation)
	return out, Outcome{}, nil
}
