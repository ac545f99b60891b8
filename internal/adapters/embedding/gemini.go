// Package embedding provides embedding service adapters.
// Clean Architecture: Adapters implementing ports.EmbeddingService.
// Every adapter enforces the configured vector dimension; nothing past this
// seam ever sees a wrong-width vector.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/campuskb/ragserve/internal/domain/entities"
)

// DefaultDimension matches the text-embedding-004 output width used at build
// and query time.
const DefaultDimension = 768

// GeminiAdapter generates embeddings via the Google Generative Language API.
type GeminiAdapter struct {
	baseURL string
	apiKey  string
	model   string
	dim     int
	client  *http.Client
}

// NewGeminiAdapter creates a Gemini embedding adapter.
func NewGeminiAdapter(baseURL, apiKey, model string, dim int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "text-embedding-004"
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &GeminiAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dim:     dim,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// geminiEmbedRequest is one entry of a batchEmbedContents request.
type geminiEmbedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiBatchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Embed generates a vector for a single text.
func (a *GeminiAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates one vector per input via a single API call.
func (a *GeminiAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := geminiBatchRequest{Requests: make([]geminiEmbedRequest, len(texts))}
	for i, t := range texts {
		batch.Requests[i] = geminiEmbedRequest{
			Model:                "models/" + a.model,
			Content:              geminiContent{Parts: []geminiPart{{Text: t}}},
			OutputDimensionality: a.dim,
		}
	}

	jsonData, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", a.baseURL, a.model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Gemini: %w", err)
	}
	defer resp.Body.Close()

	var batchResp geminiBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if batchResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (%s)", batchResp.Error.Message, batchResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini returned status %d", resp.StatusCode)
	}
	if len(batchResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(batchResp.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range batchResp.Embeddings {
		if len(e.Values) != a.dim {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				entities.ErrDimensionMismatch, i, len(e.Values), a.dim)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Dimension returns the configured vector width.
func (a *GeminiAdapter) Dimension() int {
	return a.dim
}
