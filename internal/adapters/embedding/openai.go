package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// OpenAIAdapter generates embeddings via the OpenAI API.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIAdapter creates an OpenAI embedding adapter. The requested
// dimension is passed through to the API so all models produce vectors of
// the configured width.
func NewOpenAIAdapter(apiKey, model string, dim int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
		dim:    dim,
	}, nil
}

// Embed generates an embedding for a single text.
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates one vector per input via a single API call.
func (a *OpenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(a.model),
		Input:      texts,
		Dimensions: a.dim,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		if len(d.Embedding) != a.dim {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				entities.ErrDimensionMismatch, d.Index, len(d.Embedding), a.dim)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// Dimension returns the configured vector width.
func (a *OpenAIAdapter) Dimension() int {
	return a.dim
}
