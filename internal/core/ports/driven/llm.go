package driven

import (
	"context"
	"encoding/json"
)

// LLMService provides language model text generation.
//
// Implementations include:
//   - OpenAI and Gemini (OpenAI-compatible endpoint)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// Adapters report an unknown model as domain.ErrModelNotFound and quota
// rejections as domain.ErrQuotaExceeded so that model selection can react.
type LLMService interface {
	// Generate produces a completion for userPrompt under systemPrompt.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)

	// ListModels returns the model names the provider can generate with.
	ListModels(ctx context.Context) ([]string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Model overrides the adapter's configured model for this call.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// SchemaName names the structured output schema, if any.
	SchemaName string

	// ResponseSchema requests JSON output conforming to this JSON Schema.
	// Adapters without structured output support ignore it.
	ResponseSchema json.RawMessage
}
