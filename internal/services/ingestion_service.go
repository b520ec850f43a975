package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"jarvis-assistant/internal/repositories"
)

// pendingChunk is a chunk that failed to embed or index and is waiting
// for a retry.
type pendingChunk struct {
	Index int
	Text  string
}

// pendingFile tracks the retryable remainder of a partially ingested file
type pendingFile struct {
	TotalChunks int
	Chunks      []pendingChunk
}

// IngestionService turns uploaded content into indexed documents:
// chunk, embed, add. Ingestion is not transactional; chunks indexed
// before a failure stay in the index and the remainder can be retried.
type IngestionService struct {
	chunker  Chunker
	embedder Embedder
	index    repositories.VectorIndex
	files    repositories.FileRepository
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]pendingFile
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(chunker Chunker, embedder Embedder, index repositories.VectorIndex, files repositories.FileRepository, logger *log.Logger) *IngestionService {
	return &IngestionService{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		files:    files,
		logger:   logger,
		pending:  make(map[string]pendingFile),
	}
}

// Ingest chunks and indexes the content of a registered file, then
// records the outcome on the file's registry entry. Empty content is
// rejected before any state changes.
func (s *IngestionService) Ingest(ctx context.Context, fileID, content string) error {
	if strings.TrimSpace(content) == "" {
		if err := s.files.UpdateStatus(ctx, fileID, repositories.IngestStatusFailed, 0, "content is empty or whitespace-only"); err != nil {
			s.logger.Printf("Failed to mark file %s as failed: %v", fileID, err)
		}
		return EmptyContentError("ingest")
	}

	chunks, err := s.chunker.Chunk(content)
	if err != nil {
		if updErr := s.files.UpdateStatus(ctx, fileID, repositories.IngestStatusFailed, 0, err.Error()); updErr != nil {
			s.logger.Printf("Failed to mark file %s as failed: %v", fileID, updErr)
		}
		return err
	}
	if len(chunks) == 0 {
		if err := s.files.UpdateStatus(ctx, fileID, repositories.IngestStatusFailed, 0, "content produced no chunks"); err != nil {
			s.logger.Printf("Failed to mark file %s as failed: %v", fileID, err)
		}
		return EmptyContentError("ingest")
	}

	todo := make([]pendingChunk, 0, len(chunks))
	for i, text := range chunks {
		todo = append(todo, pendingChunk{Index: i, Text: text})
	}
	return s.indexChunks(ctx, fileID, todo, len(chunks))
}

// Retry re-attempts only the chunks that failed in an earlier Ingest
// or Retry call. Files with no pending chunks have nothing to retry.
func (s *IngestionService) Retry(ctx context.Context, fileID string) error {
	s.mu.Lock()
	state, ok := s.pending[fileID]
	s.mu.Unlock()

	if !ok || len(state.Chunks) == 0 {
		file, err := s.files.Get(ctx, fileID)
		if err != nil {
			return NewServiceError(CodeNotFound, "retry", err, "")
		}
		if file.IngestStatus == repositories.IngestStatusIndexed {
			return nil
		}
		return InvalidArgumentError("retry", "file has no retryable chunks: "+fileID)
	}

	return s.indexChunks(ctx, fileID, state.Chunks, state.TotalChunks)
}

// indexChunks embeds and indexes each chunk, tolerating per-chunk
// failures. It updates the file's status and the pending set when done.
func (s *IngestionService) indexChunks(ctx context.Context, fileID string, todo []pendingChunk, totalChunks int) error {
	failed := make([]pendingChunk, 0)
	var lastErr error

	for _, chunk := range todo {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			s.logger.Printf("Failed to embed chunk %d of file %s: %v", chunk.Index, fileID, err)
			failed = append(failed, chunk)
			lastErr = err
			continue
		}

		doc := &repositories.Document{
			ID:           fmt.Sprintf("%s:%d", fileID, chunk.Index),
			Text:         chunk.Text,
			Embedding:    vector,
			SourceFileID: fileID,
			ChunkIndex:   chunk.Index,
		}
		if err := s.index.Add(ctx, doc); err != nil {
			s.logger.Printf("Failed to index chunk %d of file %s: %v", chunk.Index, fileID, err)
			failed = append(failed, chunk)
			lastErr = err
		}
	}

	s.mu.Lock()
	if len(failed) > 0 {
		s.pending[fileID] = pendingFile{TotalChunks: totalChunks, Chunks: failed}
	} else {
		delete(s.pending, fileID)
	}
	s.mu.Unlock()

	if len(failed) > 0 {
		indexed := totalChunks - len(failed)
		message := fmt.Sprintf("%d of %d chunks failed: %v", len(failed), totalChunks, lastErr)
		if err := s.files.UpdateStatus(ctx, fileID, repositories.IngestStatusFailed, indexed, message); err != nil {
			s.logger.Printf("Failed to mark file %s as failed: %v", fileID, err)
		}
		return NewServiceError(CodeEmbeddingUnavailable, "ingest", lastErr,
			fmt.Sprintf("indexed %d of %d chunks for file %s", indexed, totalChunks, fileID))
	}

	if err := s.files.UpdateStatus(ctx, fileID, repositories.IngestStatusIndexed, totalChunks, ""); err != nil {
		s.logger.Printf("Failed to mark file %s as indexed: %v", fileID, err)
	}
	s.logger.Printf("Indexed %d chunks for file %s", totalChunks, fileID)
	return nil
}

// Reset drops every document from the index and clears the retry state
func (s *IngestionService) Reset(ctx context.Context) error {
	if err := s.index.Reset(ctx); err != nil {
		return NewServiceError(CodeInternal, "reset", err, "")
	}
	s.mu.Lock()
	s.pending = make(map[string]pendingFile)
	s.mu.Unlock()
	return nil
}
