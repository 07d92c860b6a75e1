package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatConfig represents the configuration for the analysis model call.
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	APIKey      string
	BaseURL     string
}

// ChatEngine wraps the language model behind a single synchronous
// completion call.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewChatWithConfig creates a new ChatEngine backed by the OpenAI API.
func NewChatWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "gpt-4"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}

	opts := []openai.Option{openai.WithModel(config.Model)}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{config: config, llm: model}, nil
}

// NewChatWithModel creates a ChatEngine over an existing model, used by
// tests to substitute a fake.
func NewChatWithModel(config ChatConfig, model llms.Model) *ChatEngine {
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	return &ChatEngine{config: config, llm: model}
}

// Complete sends the composed prompt to the model and returns its raw text
// output. No retries; a failure surfaces immediately.
func (ce *ChatEngine) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, ce.llm, prompt,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return out, nil
}
