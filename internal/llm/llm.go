package llm

import (
	"context"
	"fmt"
)

// Client is a minimal text-in, text-out interface over an LLM chat API.
// Translation and analysis both build prompts on top of it.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// LLM service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// EnvVar returns the conventional API key environment variable for the
// provider.
func (p Provider) EnvVar() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}

// creates a Client based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	model string,
) (Client, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIClient(ctx, apiKey, model)
	case ProviderAnthropic:
		return NewAnthropicClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
