package repositories

import (
	"context"

	"jarvis-assistant/internal/db"
)

// DefaultCollectionName is the ChromaDB collection holding the corpus
const DefaultCollectionName = "assistant-passages"

// ChromaVectorIndex implements VectorIndex on top of a ChromaDB
// collection configured for cosine space. Scores are converted from
// cosine distance (1 - distance) so higher still means more similar.
type ChromaVectorIndex struct {
	client     *db.ChromaDBClient
	collection string
	dimension  int
}

// NewChromaVectorIndex creates an index backed by the named collection,
// creating the collection when it does not exist yet.
func NewChromaVectorIndex(ctx context.Context, client *db.ChromaDBClient, collection string, dimension int) (*ChromaVectorIndex, error) {
	if collection == "" {
		collection = DefaultCollectionName
	}
	if dimension <= 0 {
		return nil, InvalidIndexArgumentError("dimension must be positive")
	}

	if _, err := client.GetOrCreateCollection(ctx, collection); err != nil {
		return nil, NewVectorIndexError("new_index", err, "")
	}

	return &ChromaVectorIndex{
		client:     client,
		collection: collection,
		dimension:  dimension,
	}, nil
}

// Add stores a document and its embedding in the collection
func (idx *ChromaVectorIndex) Add(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if len(doc.Embedding) != idx.dimension {
		return &DimensionMismatchError{Want: idx.dimension, Got: len(doc.Embedding)}
	}

	metadatas := []map[string]interface{}{
		{
			"source_file_id": doc.SourceFileID,
			"chunk_index":    doc.ChunkIndex,
		},
	}
	err := idx.client.AddDocuments(ctx, idx.collection,
		[]string{doc.ID},
		[]string{doc.Text},
		[][]float32{doc.Embedding},
		metadatas,
	)
	if err != nil {
		return NewVectorIndexError("add", err, "")
	}
	return nil
}

// Query returns up to k documents ranked by similarity, best first
func (idx *ChromaVectorIndex) Query(ctx context.Context, embedding []float32, k int) ([]*SearchResult, error) {
	if k <= 0 {
		return nil, InvalidIndexArgumentError("k must be positive")
	}
	if len(embedding) != idx.dimension {
		return nil, &DimensionMismatchError{Want: idx.dimension, Got: len(embedding)}
	}

	resp, err := idx.client.Query(ctx, idx.collection, [][]float32{embedding}, k, nil)
	if err != nil {
		return nil, NewVectorIndexError("query", err, "")
	}
	if len(resp.IDs) == 0 {
		return []*SearchResult{}, nil
	}

	results := make([]*SearchResult, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		result := &SearchResult{DocumentID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			result.Text = resp.Documents[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			result.Score = 1 - resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			if sourceID, ok := resp.Metadatas[0][i]["source_file_id"].(string); ok {
				result.SourceFileID = sourceID
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Reset drops and recreates the collection
func (idx *ChromaVectorIndex) Reset(ctx context.Context) error {
	if err := idx.client.DeleteCollection(ctx, idx.collection); err != nil {
		return NewVectorIndexError("reset", err, "")
	}
	if _, err := idx.client.CreateCollection(ctx, idx.collection, nil); err != nil {
		return NewVectorIndexError("reset", err, "")
	}
	return nil
}

// Count returns the number of indexed documents
func (idx *ChromaVectorIndex) Count(ctx context.Context) (int, error) {
	count, err := idx.client.CountCollection(ctx, idx.collection)
	if err != nil {
		return 0, NewVectorIndexError("count", err, "")
	}
	return count, nil
}

// Dimension returns the configured vector size
func (idx *ChromaVectorIndex) Dimension() int {
	return idx.dimension
}

// Ping checks if ChromaDB is alive
func (idx *ChromaVectorIndex) Ping(ctx context.Context) error {
	return idx.client.Heartbeat(ctx)
}

// Close releases the underlying HTTP connections
func (idx *ChromaVectorIndex) Close() error {
	idx.client.Close()
	return nil
}
