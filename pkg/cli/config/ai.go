package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/dependahunt/pkg/domain/types"
	"github.com/m-mizutani/dependahunt/pkg/infra/llm"
)

// AI holds AI backend configuration. The provider selects one of the
// transport/auth variants; the prompt contract is identical across them.
type AI struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GeminiAPIKey    string
	VertexProjectID string
	VertexLocation  string
}

// Flags returns CLI flags for AI backend configuration
func (c *AI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ai-provider",
			Usage:       "AI provider (claude-vertex, claude-direct, gemini-vertex, gemini-direct)",
			Value:       string(llm.ProviderGeminiVertex),
			Destination: &c.Provider,
			Sources:     cli.EnvVars("DEPENDAHUNT_AI_PROVIDER"),
		},
		&cli.StringFlag{
			Name:        "ai-model",
			Usage:       "Model name (defaults per provider)",
			Destination: &c.Model,
			Sources:     cli.EnvVars("DEPENDAHUNT_AI_MODEL"),
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key (claude-direct)",
			Destination: &c.AnthropicAPIKey,
			Sources:     cli.EnvVars("DEPENDAHUNT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key (gemini-direct)",
			Destination: &c.GeminiAPIKey,
			Sources:     cli.EnvVars("DEPENDAHUNT_GEMINI_API_KEY", "GEMINI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "vertex-project-id",
			Usage:       "Google Cloud project ID (vertex providers)",
			Destination: &c.VertexProjectID,
			Sources:     cli.EnvVars("DEPENDAHUNT_VERTEX_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "vertex-location",
			Usage:       "Vertex AI location/region",
			Value:       "us-central1",
			Destination: &c.VertexLocation,
			Sources:     cli.EnvVars("DEPENDAHUNT_VERTEX_LOCATION"),
		},
	}
}

var defaultModels = map[llm.Provider]string{
	llm.ProviderClaudeVertex: "claude-sonnet-4-5",
	llm.ProviderClaudeDirect: "claude-sonnet-4-5",
	llm.ProviderGeminiVertex: "gemini-2.5-flash",
	llm.ProviderGeminiDirect: "gemini-2.5-flash",
}

// Validate checks the provider and its required credentials, filling the
// model default when unset.
func (c *AI) Validate() error {
	provider := llm.Provider(c.Provider)
	fallback, ok := defaultModels[provider]
	if !ok {
		return goerr.New("unknown AI provider",
			goerr.Tag(types.ErrTagConfig), goerr.V("provider", c.Provider))
	}
	if c.Model == "" {
		c.Model = fallback
	}

	switch provider {
	case llm.ProviderClaudeDirect:
		if c.AnthropicAPIKey == "" {
			return goerr.New("anthropic API key is required for claude-direct",
				goerr.Tag(types.ErrTagConfig))
		}
	case llm.ProviderGeminiDirect:
		if c.GeminiAPIKey == "" {
			return goerr.New("gemini API key is required for gemini-direct",
				goerr.Tag(types.ErrTagConfig))
		}
	case llm.ProviderClaudeVertex, llm.ProviderGeminiVertex:
		if c.VertexProjectID == "" {
			return goerr.New("vertex project ID is required for vertex providers",
				goerr.Tag(types.ErrTagConfig))
		}
		if c.VertexLocation == "" {
			return goerr.New("vertex location is required for vertex providers",
				goerr.Tag(types.ErrTagConfig))
		}
	}

	return nil
}

// BackendConfig converts the validated configuration into the adapter's
// config.
func (c *AI) BackendConfig() llm.Config {
	return llm.Config{
		Provider:        llm.Provider(c.Provider),
		Model:           c.Model,
		AnthropicAPIKey: c.AnthropicAPIKey,
		GeminiAPIKey:    c.GeminiAPIKey,
		VertexProjectID: c.VertexProjectID,
		VertexLocation:  c.VertexLocation,
	}
}
