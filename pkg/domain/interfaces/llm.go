package interfaces

import "context"

// LLMClient is the uniform contract over AI providers. Variants differ only
// in transport and auth; the prompt/response contract is identical.
type LLMClient interface {
	// Generate sends the prompts and returns the raw model response, which
	// callers parse into a structured assessment.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name identifies the provider variant, for logging.
	Name() string
}
