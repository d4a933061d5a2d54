package driven

import "context"

// LLMService generates answer text from an assembled prompt.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Generate produces text completion from a prompt.
	// Empty model output is an error.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
