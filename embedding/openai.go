package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/resilience-labs/climatechat/schema"
)

// OpenAIProvider embeds with an OpenAI-compatible embeddings endpoint.
// The sparse half comes from local lexical weights since the API is
// dense-only.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, schema.SparseVector, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, schema.SparseVector{}, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, schema.SparseVector{}, fmt.Errorf("openai embedding: empty response")
	}
	src := resp.Data[0].Embedding
	dense := make([]float32, len(src))
	for i, v := range src {
		dense[i] = float32(v)
	}
	return dense, LexicalWeights(text), nil
}
