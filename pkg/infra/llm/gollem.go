package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// gollemClient adapts any gollem-backed provider (Claude direct, Claude on
// Vertex, Gemini on Vertex) to the LLMClient contract. Each Generate call
// uses a fresh JSON-mode session; the analysis is single-turn by design.
type gollemClient struct {
	name   string
	client gollem.LLMClient
}

func (c *gollemClient) Name() string {
	return c.name
}

func (c *gollemClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ssn, err := c.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session",
			goerr.Tag(types.ErrTagBackend), goerr.V("provider", c.name))
	}

	resp, err := ssn.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate LLM content",
			goerr.Tag(types.ErrTagBackend), goerr.V("provider", c.name))
	}

	if len(resp.Texts) == 0 {
		return "", goerr.New("empty response from LLM",
			goerr.Tag(types.ErrTagBackend), goerr.V("provider", c.name))
	}
	return resp.Texts[0], nil
}
