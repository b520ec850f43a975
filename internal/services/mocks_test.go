package services

import (
	"context"

	"jarvis-assistant/internal/models"

	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Shared mocks for the services package
// ============================================================================

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
	dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	return &MockEmbedder{dim: dim}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Dimension() int {
	return m.dim
}

// MockCompletionClient is a mock implementation of CompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockRetriever is a mock implementation of Retriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedContext, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RetrievedContext), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, query string, contexts []models.RetrievedContext) (string, error) {
	args := m.Called(ctx, query, contexts)
	return args.String(0), args.Error(1)
}

// fixedChunker returns a preset chunk list regardless of input
type fixedChunker struct {
	chunks []string
}

func (c *fixedChunker) Chunk(text string) ([]string, error) {
	return c.chunks, nil
}
