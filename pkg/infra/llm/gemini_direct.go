package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// geminiDirect talks to the Gemini API with an API key, without Vertex.
// gollem's gemini client is Vertex-bound, so this variant uses the genai SDK
// directly while honoring the same prompt/response contract.
type geminiDirect struct {
	client *genai.Client
	model  string
}

func newGeminiDirect(ctx context.Context, apiKey, model string) (*geminiDirect, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client")
	}

	return &geminiDirect{client: client, model: model}, nil
}

func (c *geminiDirect) Name() string {
	return string(ProviderGeminiDirect)
}

func (c *geminiDirect) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate gemini content",
			goerr.Tag(types.ErrTagBackend), goerr.V("model", c.model))
	}

	text := resp.Text()
	if text == "" {
		return "", goerr.New("empty response from gemini",
			goerr.Tag(types.ErrTagBackend), goerr.V("model", c.model))
	}
	return text, nil
}
