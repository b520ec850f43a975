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

// ============================================================================
// Test Setup
// ============================================================================

func setupTestIngestion(t *testing.T, chunks []string, embedder Embedder) (*IngestionService, *repositories.MemoryVectorIndex, *repositories.MemoryFileRepository) {
	index := repositories.NewMemoryVectorIndex(3)
	files := repositories.NewMemoryFileRepository()
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)

	service := NewIngestionService(&fixedChunker{chunks: chunks}, embedder, index, files, logger)
	return service, index, files
}

func registerPendingFile(t *testing.T, files *repositories.MemoryFileRepository, fileID string) {
	err := files.Register(context.Background(), &repositories.UploadedFile{
		ID:           fileID,
		Name:         fileID + ".txt",
		IngestStatus: repositories.IngestStatusPending,
	})
	assert.NoError(t, err)
}

// ============================================================================
// Tests
// ============================================================================

func TestIngest_EmptyContent(t *testing.T) {
	embedder := NewMockEmbedder(3)
	service, index, files := setupTestIngestion(t, nil, embedder)
	ctx := context.Background()
	registerPendingFile(t, files, "f1")

	err := service.Ingest(ctx, "f1", "   \n ")
	assert.Error(t, err)
	assert.True(t, IsCode(err, CodeEmptyContent))

	// Nothing was indexed and the file is marked failed
	count, _ := index.Count(ctx)
	assert.Equal(t, 0, count)
	file, _ := files.Get(ctx, "f1")
	assert.Equal(t, repositories.IngestStatusFailed, file.IngestStatus)
}

func TestIngest_Success(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

	service, index, files := setupTestIngestion(t, []string{"chunk one", "chunk two"}, embedder)
	ctx := context.Background()
	registerPendingFile(t, files, "f1")

	err := service.Ingest(ctx, "f1", "chunk one chunk two")
	assert.NoError(t, err)

	count, _ := index.Count(ctx)
	assert.Equal(t, 2, count)

	file, _ := files.Get(ctx, "f1")
	assert.Equal(t, repositories.IngestStatusIndexed, file.IngestStatus)
	assert.Equal(t, 2, file.ChunkCount)
	assert.Empty(t, file.Error)

	embedder.AssertNumberOfCalls(t, "Embed", 2)
}

func TestIngest_PartialFailureKeepsIndexedChunks(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, "beta").Return(nil, errors.New("backend down")).Once()
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0, 1, 0}, nil)

	service, index, files := setupTestIngestion(t, []string{"alpha", "beta", "gamma"}, embedder)
	ctx := context.Background()
	registerPendingFile(t, files, "f1")

	err := service.Ingest(ctx, "f1", "alpha beta gamma")
	assert.Error(t, err)
	assert.True(t, IsCode(err, CodeEmbeddingUnavailable))

	// Successfully embedded chunks stay indexed, no rollback
	count, _ := index.Count(ctx)
	assert.Equal(t, 2, count)

	file, _ := files.Get(ctx, "f1")
	assert.Equal(t, repositories.IngestStatusFailed, file.IngestStatus)
	assert.Equal(t, 2, file.ChunkCount)
	assert.NotEmpty(t, file.Error)
}

func TestRetry_ReprocessesOnlyFailedChunks(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, "beta").Return(nil, errors.New("backend down")).Once()
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0, 1, 0}, nil)

	service, index, files := setupTestIngestion(t, []string{"alpha", "beta", "gamma"}, embedder)
	ctx := context.Background()
	registerPendingFile(t, files, "f1")

	assert.Error(t, service.Ingest(ctx, "f1", "alpha beta gamma"))

	// Retry only re-embeds the failed chunk
	err := service.Retry(ctx, "f1")
	assert.NoError(t, err)

	count, _ := index.Count(ctx)
	assert.Equal(t, 3, count)

	file, _ := files.Get(ctx, "f1")
	assert.Equal(t, repositories.IngestStatusIndexed, file.IngestStatus)

	// 3 initial attempts + 1 retry
	embedder.AssertNumberOfCalls(t, "Embed", 4)

	// A second retry is a no-op for an indexed file
	assert.NoError(t, service.Retry(ctx, "f1"))
	embedder.AssertNumberOfCalls(t, "Embed", 4)
}

func TestRetry_UnknownFile(t *testing.T) {
	embedder := NewMockEmbedder(3)
	service, _, _ := setupTestIngestion(t, nil, embedder)

	err := service.Retry(context.Background(), "missing")
	assert.Error(t, err)
	assert.True(t, IsCode(err, CodeNotFound))
}

func TestReset_ClearsIndexAndPendingState(t *testing.T) {
	embedder := NewMockEmbedder(3)
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil)

	service, index, files := setupTestIngestion(t, []string{"alpha"}, embedder)
	ctx := context.Background()
	registerPendingFile(t, files, "f1")

	assert.NoError(t, service.Ingest(ctx, "f1", "alpha"))
	assert.NoError(t, service.Reset(ctx))

	count, _ := index.Count(ctx)
	assert.Equal(t, 0, count)
}
