// Package llm provides LLM adapters for answer generation.
// Clean Architecture: Adapters implementing ports.LLMService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GeminiAdapter generates answers via the Google Generative Language API.
type GeminiAdapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGeminiAdapter creates a Gemini generation adapter.
func NewGeminiAdapter(baseURL, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}
	return &GeminiAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type geminiGenerateRequest struct {
	Contents []geminiTurn `json:"contents"`
}

type geminiTurn struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate produces an answer for the prompt. An empty model uses the
// adapter's configured default.
func (a *GeminiAdapter) Generate(ctx context.Context, prompt string, model string) (string, error) {
	if model == "" {
		model = a.model
	}

	reqBody := geminiGenerateRequest{
		Contents: []geminiTurn{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini: %w", err)
	}
	defer resp.Body.Close()

	var genResp geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s (%s)", genResp.Error.Message, genResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini returned status %d", resp.StatusCode)
	}
	if len(genResp.Candidates) == 0 {
		if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("request blocked: %s", genResp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("response has no candidates")
	}

	candidate := genResp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("candidate has no content parts (finish reason: %s)", candidate.FinishReason)
	}
	return candidate.Content.Parts[0].Text, nil
}
