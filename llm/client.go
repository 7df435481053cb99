package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/teilomillet/gollm"

	"github.com/martinemde/shellagent/agent"
)

// Client is a gollm-backed model capability. It translates the agent's
// conversation into a gollm prompt, classifies provider errors, retries
// retryable ones, and accounts calls and cost for the loop's limit
// checks.
type Client struct {
	provider string
	model    string
	llm      gollm.LLM
	retry    RetryPolicy

	mu     sync.Mutex
	nCalls int
	cost   float64
}

var _ agent.Model = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	maxTokens   int
	temperature float64
	retry       RetryPolicy
	extraOpts   []gollm.ConfigOption
}

// WithMaxTokens sets the per-response token cap.
func WithMaxTokens(n int) ClientOption {
	return func(c *clientConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ClientOption {
	return func(c *clientConfig) { c.temperature = t }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *clientConfig) { c.retry = p }
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) ClientOption {
	return func(c *clientConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewClient creates a Client for the given provider. An empty model
// picks the provider's newest catalog entry. If apiKey is empty, gollm
// reads it from the provider's environment variable.
func NewClient(provider, model, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		maxTokens:   4096,
		temperature: 0.7,
		retry:       DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if model == "" {
		info := GetLatestModel(provider)
		if info == nil {
			return nil, &ConfigurationError{ClientError: ClientError{
				Message: fmt.Sprintf("no default model known for provider %q", provider),
			}}
		}
		model = info.ID
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // We handle retries ourselves.
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}

	return &Client{
		provider: provider,
		model:    model,
		llm:      llm,
		retry:    cfg.retry,
	}, nil
}

// EnvConfig is the environment-variable surface for NewClientFromEnv.
type EnvConfig struct {
	Provider    string  `env:"SHELLAGENT_PROVIDER" envDefault:"anthropic"`
	Model       string  `env:"SHELLAGENT_MODEL"`
	APIKey      string  `env:"SHELLAGENT_API_KEY"`
	MaxTokens   int     `env:"SHELLAGENT_MAX_TOKENS" envDefault:"4096"`
	Temperature float64 `env:"SHELLAGENT_TEMPERATURE" envDefault:"0.7"`
}

// NewClientFromEnv creates a Client configured from SHELLAGENT_*
// environment variables.
func NewClientFromEnv() (*Client, error) {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parse llm config from environment: %w", err)
	}
	return NewClient(ec.Provider, ec.Model, ec.APIKey,
		WithMaxTokens(ec.MaxTokens), WithTemperature(ec.Temperature))
}

// Query sends the conversation to the model and returns its response.
// Each successful query increments the call counter and accrues cost
// from estimated token usage and catalog pricing.
func (c *Client) Query(ctx context.Context, messages []agent.Message) (*agent.Response, error) {
	prompt, inputTokens := c.translateConversation(messages)

	text, err := retry(ctx, c.retry, func(ctx context.Context) (string, error) {
		text, err := c.llm.Generate(ctx, prompt)
		if err != nil {
			return "", classifyError(c.provider, err)
		}
		return text, nil
	})
	if err != nil {
		return nil, err
	}

	// gollm does not expose provider usage; estimate from text length.
	outputTokens := len(text) / 4
	queryCost := CostOf(c.model, inputTokens, outputTokens)

	c.mu.Lock()
	c.nCalls++
	c.cost += queryCost
	c.mu.Unlock()

	return &agent.Response{
		Content: text,
		Extra: map[string]any{
			"response_id":   "resp_" + uuid.New().String()[:8],
			"model":         c.model,
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"cost":          queryCost,
		},
	}, nil
}

// NCalls returns the cumulative number of successful queries.
func (c *Client) NCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nCalls
}

// Cost returns the cumulative cost in dollars.
func (c *Client) Cost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// TemplateVars returns model-specific template variables.
func (c *Client) TemplateVars() map[string]string {
	return map[string]string{
		"model_name":     c.model,
		"model_provider": c.provider,
		"model_context_window": strconv.Itoa(func() int {
			if info := GetModelInfo(c.model); info != nil {
				return info.ContextWindow
			}
			return 0
		}()),
	}
}

// translateConversation builds a gollm prompt from the folded
// conversation. Returns the prompt and an input token estimate.
func (c *Client) translateConversation(messages []agent.Message) (*gollm.Prompt, int) {
	systemPrompt, promptText, chars := foldMessages(messages)

	var promptOpts []gollm.PromptOption
	if systemPrompt != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral))
	}

	inputTokens := chars / 4
	if inputTokens == 0 {
		inputTokens = 10
	}
	return gollm.NewPrompt(promptText, promptOpts...), inputTokens
}

// foldMessages flattens the role-tagged conversation for a single-turn
// prompt API: system messages concatenate into the system prompt, user
// and assistant messages interleave in order into the prompt body.
// Returns the system prompt, the prompt body, and the total character
// count.
func foldMessages(messages []agent.Message) (systemPrompt, promptText string, chars int) {
	var system strings.Builder
	var parts []string

	for _, msg := range messages {
		chars += len(msg.Content)
		switch msg.Role {
		case agent.RoleSystem:
			system.WriteString(msg.Content)
			system.WriteString("\n")
		case agent.RoleUser:
			parts = append(parts, msg.Content)
		case agent.RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		}
	}

	promptText = strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}
	return strings.TrimSpace(system.String()), promptText, chars
}
