// Package llm provides the AI backend adapter: one uniform client contract
// over several provider/transport variants. New providers add a variant
// here; callers never change.
package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"

	"github.com/m-mizutani/dependahunt/pkg/domain/interfaces"
	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// Provider identifies a provider/transport pair.
type Provider string

const (
	ProviderClaudeVertex Provider = "claude-vertex"
	ProviderClaudeDirect Provider = "claude-direct"
	ProviderGeminiVertex Provider = "gemini-vertex"
	ProviderGeminiDirect Provider = "gemini-direct"
)

// Config selects and parameterizes a provider variant.
type Config struct {
	Provider        Provider
	Model           string
	AnthropicAPIKey string
	GeminiAPIKey    string
	VertexProjectID string
	VertexLocation  string
}

// New builds the configured provider variant wrapped in the shared retry
// policy. Credential validation happens here so the failure is raised at
// startup, before any analysis work.
func New(ctx context.Context, cfg Config) (interfaces.LLMClient, error) {
	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return withRetry(base), nil
}

func newBase(ctx context.Context, cfg Config) (interfaces.LLMClient, error) {
	switch cfg.Provider {
	case ProviderClaudeDirect:
		if cfg.AnthropicAPIKey == "" {
			return nil, goerr.New("anthropic API key is required for claude-direct",
				goerr.Tag(types.ErrTagConfig))
		}
		c, err := claude.New(ctx, cfg.AnthropicAPIKey, claude.WithModel(cfg.Model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create claude client")
		}
		return &gollemClient{name: string(cfg.Provider), client: c}, nil

	case ProviderClaudeVertex:
		if cfg.VertexProjectID == "" || cfg.VertexLocation == "" {
			return nil, goerr.New("vertex project ID and location are required for claude-vertex",
				goerr.Tag(types.ErrTagConfig))
		}
		c, err := claude.NewWithVertex(ctx, cfg.VertexLocation, cfg.VertexProjectID,
			claude.WithVertexModel(cfg.Model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create claude vertex client")
		}
		return &gollemClient{name: string(cfg.Provider), client: c}, nil

	case ProviderGeminiVertex:
		if cfg.VertexProjectID == "" || cfg.VertexLocation == "" {
			return nil, goerr.New("vertex project ID and location are required for gemini-vertex",
				goerr.Tag(types.ErrTagConfig))
		}
		c, err := gemini.New(ctx, cfg.VertexLocation, cfg.VertexProjectID,
			gemini.WithModel(cfg.Model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini vertex client")
		}
		return &gollemClient{name: string(cfg.Provider), client: c}, nil

	case ProviderGeminiDirect:
		if cfg.GeminiAPIKey == "" {
			return nil, goerr.New("gemini API key is required for gemini-direct",
				goerr.Tag(types.ErrTagConfig))
		}
		return newGeminiDirect(ctx, cfg.GeminiAPIKey, cfg.Model)

	default:
		return nil, goerr.New("unknown AI provider",
			goerr.Tag(types.ErrTagConfig), goerr.V("provider", cfg.Provider))
	}
}
