package agent

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the per-run agent configuration: the five message
// templates and the run limits. A Config is created once per run and
// never mutated.
//
// Templates use text/template syntax and are rendered with strict
// variable resolution: referencing an undefined variable is a fatal
// rendering error, not a silent blank.
type Config struct {
	// SystemTemplate renders the system message that opens every run.
	SystemTemplate string `env:"SHELLAGENT_SYSTEM_TEMPLATE"`
	// InstanceTemplate renders the first user message; {{.task}} holds
	// the task text.
	InstanceTemplate string `env:"SHELLAGENT_INSTANCE_TEMPLATE"`
	// TimeoutTemplate renders the feedback message after a timed-out
	// command; {{.action}} is the command, {{.output}} the partial output.
	TimeoutTemplate string `env:"SHELLAGENT_TIMEOUT_TEMPLATE"`
	// FormatErrorTemplate renders the feedback message when the model
	// response did not contain exactly one action; {{.actions}} lists the
	// candidates that were found.
	FormatErrorTemplate string `env:"SHELLAGENT_FORMAT_ERROR_TEMPLATE"`
	// ObservationTemplate renders the observation fed back after each
	// successful command; {{.output}} holds the decoded output.
	ObservationTemplate string `env:"SHELLAGENT_OBSERVATION_TEMPLATE"`

	// StepLimit caps the number of model calls. Zero or negative means
	// unlimited.
	StepLimit int `env:"SHELLAGENT_STEP_LIMIT"`
	// CostLimit caps the cumulative model cost in dollars. Zero or
	// negative means unlimited.
	CostLimit float64 `env:"SHELLAGENT_COST_LIMIT"`
}

// DefaultConfig returns the minimum viable configuration for running
// the agent. Production setups should supply richer templates.
func DefaultConfig() Config {
	return Config{
		SystemTemplate: "You are a helpful assistant that can interact with a computer to solve tasks.",
		InstanceTemplate: "Your task: {{.task}}. Reply with exactly one shell command in triple backticks. " +
			"To finish, the first line of the command's output must be 'COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT'.",
		TimeoutTemplate: "The previous command <command>{{.action}}</command> timed out and was killed.\n" +
			"The output of the command was:\n<output>\n{{.output}}\n</output>\n" +
			"Please try a different command and avoid commands that require interactive input.",
		FormatErrorTemplate: "Please always provide exactly one action in triple backticks. " +
			"Found {{len .actions}} actions:{{range .actions}}\n---\n{{.}}{{end}}",
		ObservationTemplate: "Observation: {{.output}}",
		StepLimit:           0,
		CostLimit:           3.0,
	}
}

// ConfigFromEnv returns DefaultConfig overlaid with any SHELLAGENT_*
// environment variables that are set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse agent config from environment: %w", err)
	}
	return cfg, nil
}

// templateVars exposes all config fields to the template context under
// snake_case names, mirroring the field order above.
func (c Config) templateVars() map[string]any {
	return map[string]any{
		"system_template":       c.SystemTemplate,
		"instance_template":     c.InstanceTemplate,
		"timeout_template":      c.TimeoutTemplate,
		"format_error_template": c.FormatErrorTemplate,
		"observation_template":  c.ObservationTemplate,
		"step_limit":            c.StepLimit,
		"cost_limit":            c.CostLimit,
	}
}
