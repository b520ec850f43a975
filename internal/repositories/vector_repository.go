package repositories

import (
	"context"
	"strconv"
)

// VectorIndex defines the interface for the document vector store.
// Implementations must guarantee that queries never observe a document
// mid-insertion: readers may run concurrently with each other, writers
// are mutually exclusive with all readers and other writers.
type VectorIndex interface {
	// Add indexes a document. Fails with a DimensionMismatch error if the
	// embedding length differs from the index dimension.
	Add(ctx context.Context, doc *Document) error

	// Query returns at most k documents sorted by descending cosine
	// similarity. Ties are broken by insertion order: the earlier-inserted
	// document ranks first. A zero-norm query embedding scores 0 against
	// every document and is not an error.
	Query(ctx context.Context, embedding []float32, k int) ([]*SearchResult, error)

	// Reset clears all indexed documents
	Reset(ctx context.Context) error

	// Count returns the number of indexed documents
	Count(ctx context.Context) (int, error)

	// Dimension returns the fixed embedding dimensionality D of the index
	Dimension() int

	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Document represents an indexed passage with its embedding.
// Documents are immutable once indexed and owned exclusively by the
// VectorIndex; they are destroyed only by an explicit Reset.
type Document struct {
	ID           string    `json:"document_id"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"embedding"`
	SourceFileID string    `json:"source_file_id,omitempty"`
	ChunkIndex   int       `json:"chunk_index"`
}

// Validate checks if the document is valid
func (d *Document) Validate() error {
	if d.ID == "" {
		return InvalidIndexArgumentError("document ID is required")
	}
	if d.Text == "" {
		return InvalidIndexArgumentError("document text is required")
	}
	if len(d.Embedding) == 0 {
		return InvalidIndexArgumentError("document embedding is required")
	}
	return nil
}

// SearchResult represents a single similarity search hit
type SearchResult struct {
	DocumentID   string  `json:"document_id"`
	Text         string  `json:"text"`
	Score        float32 `json:"score"` // Cosine similarity (0-1, higher is better)
	SourceFileID string  `json:"source_file_id,omitempty"`
}

// VectorIndexError represents errors from the vector index
type VectorIndexError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorIndexError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorIndexError) Unwrap() error {
	return e.Err
}

// NewVectorIndexError creates a new vector index error
func NewVectorIndexError(operation string, err error, message string) *VectorIndexError {
	return &VectorIndexError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// DimensionMismatchError indicates an embedding whose length does not match
// the index dimension. This is an embedding-capability contract violation
// and is fatal to the specific add or query call only.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return "embedding dimension mismatch: index dimension is " +
		strconv.Itoa(e.Want) + ", got " + strconv.Itoa(e.Got)
}

// InvalidIndexArgumentError reports a malformed document or query
func InvalidIndexArgumentError(reason string) error {
	return NewVectorIndexError("validate", nil, "invalid argument: "+reason)
}
