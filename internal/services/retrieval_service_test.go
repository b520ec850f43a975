package services

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"jarvis-assistant/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestRetrieval(t *testing.T, embedder Embedder) (*RetrievalService, *repositories.MemoryVectorIndex) {
	index := repositories.NewMemoryVectorIndex(3)
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	return NewRetrievalService(embedder, index, logger), index
}

func TestRetrieve_InvalidK(t *testing.T) {
	service, _ := setupTestRetrieval(t, NewMockEmbedder(3))

	_, err := service.Retrieve(context.Background(), "query", 0)
	assert.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidArgument))

	_, err = service.Retrieve(context.Background(), "query", -3)
	assert.True(t, IsCode(err, CodeInvalidArgument))
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, "query").Return([]float32{1, 0, 0}, nil)

	service, _ := setupTestRetrieval(t, embedder)

	contexts, err := service.Retrieve(context.Background(), "query", 4)
	assert.NoError(t, err)
	assert.Empty(t, contexts)
}

func TestRetrieve_RankedResults(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, "query").Return([]float32{1, 0, 0}, nil)

	service, index := setupTestRetrieval(t, embedder)
	ctx := context.Background()

	assert.NoError(t, index.Add(ctx, &repositories.Document{ID: "far", Text: "far text", Embedding: []float32{0, 1, 0}}))
	assert.NoError(t, index.Add(ctx, &repositories.Document{ID: "near", Text: "near text", Embedding: []float32{1, 0, 0}}))

	contexts, err := service.Retrieve(ctx, "query", 2)
	assert.NoError(t, err)
	assert.Len(t, contexts, 2)
	assert.Equal(t, "near", contexts[0].DocumentID)
	assert.Equal(t, "near text", contexts[0].Text)
	assert.Greater(t, contexts[0].Score, contexts[1].Score)
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))

	service, _ := setupTestRetrieval(t, embedder)

	_, err := service.Retrieve(context.Background(), "query", 4)
	assert.Error(t, err)
	assert.True(t, IsCode(err, CodeEmbeddingUnavailable))
}

func TestStats(t *testing.T) {
	embedder := NewMockEmbedder(3)
	service, index := setupTestRetrieval(t, embedder)
	ctx := context.Background()

	stats, err := service.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectors)
	assert.Equal(t, 3, stats.Dimension)

	assert.NoError(t, index.Add(ctx, &repositories.Document{ID: "a", Text: "t", Embedding: []float32{1, 0, 0}}))
	stats, err = service.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
}
