package llm

import (
	"strings"
	"testing"

	"github.com/martinemde/shellagent/agent"
)

func TestFoldMessages(t *testing.T) {
	system, prompt, chars := foldMessages([]agent.Message{
		{Role: agent.RoleSystem, Content: "be helpful"},
		{Role: agent.RoleUser, Content: "task: list files"},
		{Role: agent.RoleAssistant, Content: "```bash\nls\n```"},
		{Role: agent.RoleUser, Content: "Observation: a.txt"},
	})

	if system != "be helpful" {
		t.Errorf("system prompt %q", system)
	}
	lines := strings.Split(prompt, "\n")
	if lines[0] != "task: list files" {
		t.Errorf("first prompt line %q", lines[0])
	}
	if !strings.Contains(prompt, "[Assistant]: ```bash") {
		t.Errorf("assistant turn missing from prompt: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Observation: a.txt") {
		t.Errorf("observation must come last: %q", prompt)
	}
	if chars == 0 {
		t.Error("expected a character count")
	}
}

func TestFoldMessagesEmpty(t *testing.T) {
	system, prompt, _ := foldMessages(nil)
	if system != "" {
		t.Errorf("system prompt %q, want empty", system)
	}
	if prompt == "" {
		t.Error("prompt body must never be empty")
	}
}

func TestFoldMessagesMultipleSystem(t *testing.T) {
	system, _, _ := foldMessages([]agent.Message{
		{Role: agent.RoleSystem, Content: "first"},
		{Role: agent.RoleSystem, Content: "second"},
	})
	if system != "first\nsecond" {
		t.Errorf("system prompts must concatenate in order, got %q", system)
	}
}

func TestTemplateVars(t *testing.T) {
	c := &Client{provider: "anthropic", model: "claude-sonnet-4-5"}
	vars := c.TemplateVars()
	if vars["model_name"] != "claude-sonnet-4-5" {
		t.Errorf("model_name %q", vars["model_name"])
	}
	if vars["model_provider"] != "anthropic" {
		t.Errorf("model_provider %q", vars["model_provider"])
	}
	if vars["model_context_window"] != "200000" {
		t.Errorf("model_context_window %q", vars["model_context_window"])
	}
}

func TestCountersStartAtZero(t *testing.T) {
	c := &Client{provider: "anthropic", model: "claude-sonnet-4-5"}
	if c.NCalls() != 0 {
		t.Errorf("NCalls %d, want 0", c.NCalls())
	}
	if c.Cost() != 0 {
		t.Errorf("Cost %f, want 0", c.Cost())
	}
}

func TestNewClientUnknownProviderNoModel(t *testing.T) {
	_, err := NewClient("no-such-provider", "", "")
	if err == nil {
		t.Fatal("expected error for provider without catalog default")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}
