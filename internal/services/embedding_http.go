package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultEmbeddingModel = "text-embedding-nomic-embed-text-v1.5"

// EmbeddingRequest represents the request format for OpenAI-compatible
// embedding endpoints
type EmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// EmbeddingResponse represents the response from the embedding endpoint
type EmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint
// (LM Studio, Ollama, or a hosted provider).
type HTTPEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewHTTPEmbedder creates an embedder backed by a remote endpoint.
// The dimension must match what the configured model produces.
func NewHTTPEmbedder(baseURL, model string, dimension int) *HTTPEmbedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if dimension <= 0 {
		dimension = DefaultEmbeddingDimension
	}
	return &HTTPEmbedder{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Embed sends the text to the embedding endpoint and returns the vector
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embRequest := EmbeddingRequest{
		Model: e.model,
		Input: text,
	}

	jsonBody, err := json.Marshal(embRequest)
	if err != nil {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", err, "embedding endpoint not reachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", nil,
			fmt.Sprintf("embedding endpoint returned status %d: %s", resp.StatusCode, string(body)))
	}

	var embResponse EmbeddingResponse
	if err := json.Unmarshal(body, &embResponse); err != nil {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", err, "failed to parse response")
	}

	if len(embResponse.Data) == 0 {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", nil, "embedding endpoint returned no data")
	}

	vector := embResponse.Data[0].Embedding
	if len(vector) != e.dimension {
		return nil, NewServiceError(CodeEmbeddingUnavailable, "embed", nil,
			fmt.Sprintf("embedding endpoint returned dimension %d, expected %d", len(vector), e.dimension))
	}
	return vector, nil
}

// Dimension returns the configured vector size
func (e *HTTPEmbedder) Dimension() int {
	return e.dimension
}

// HealthCheck verifies the embedding endpoint is reachable
func (e *HTTPEmbedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/models", nil)
	if err != nil {
		return err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding endpoint not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
