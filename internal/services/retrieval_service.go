package services

import (
	"context"
	"fmt"
	"log"

	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/repositories"
)

// DefaultTopK is the number of passages retrieved when the caller does
// not ask for a specific count.
const DefaultTopK = 4

// RetrievalService embeds queries and searches the vector index
type RetrievalService struct {
	embedder Embedder
	index    repositories.VectorIndex
	logger   *log.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(embedder Embedder, index repositories.VectorIndex, logger *log.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Retrieve returns up to k passages ranked by similarity to the query,
// best first. An empty index yields an empty result, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedContext, error) {
	if k <= 0 {
		return nil, InvalidArgumentError("retrieve", fmt.Sprintf("k must be positive, got %d", k))
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if IsCode(err, CodeEmbeddingUnavailable) {
			return nil, err
		}
		return nil, NewServiceError(CodeEmbeddingUnavailable, "retrieve", err, "")
	}

	results, err := s.index.Query(ctx, vector, k)
	if err != nil {
		return nil, NewServiceError(CodeInternal, "retrieve", err, "")
	}

	contexts := make([]models.RetrievedContext, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, models.RetrievedContext{
			DocumentID: r.DocumentID,
			Text:       r.Text,
			Score:      r.Score,
		})
	}

	s.logger.Printf("Retrieved %d/%d passages for query", len(contexts), k)
	return contexts, nil
}

// Stats reports the current size and dimension of the index
func (s *RetrievalService) Stats(ctx context.Context) (*models.IndexStats, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, NewServiceError(CodeInternal, "stats", err, "")
	}
	return &models.IndexStats{
		TotalVectors: count,
		Dimension:    s.index.Dimension(),
	}, nil
}
