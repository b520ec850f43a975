package repositories

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryVectorIndex implements VectorIndex with an in-process brute-force
// cosine similarity scan. It is the default index and the reference for
// ranking semantics: descending score, ties broken by insertion order.
type MemoryVectorIndex struct {
	mu        sync.RWMutex
	dimension int
	docs      []*Document
	norms     []float64 // Precomputed L2 norms, parallel to docs
}

// NewMemoryVectorIndex creates an in-memory index with the given dimension
func NewMemoryVectorIndex(dimension int) *MemoryVectorIndex {
	return &MemoryVectorIndex{
		dimension: dimension,
	}
}

// Add indexes a document. The document is stored as-is and treated as
// immutable from this point on.
func (m *MemoryVectorIndex) Add(ctx context.Context, doc *Document) error {
	if doc == nil {
		return InvalidIndexArgumentError("document is required")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if len(doc.Embedding) != m.dimension {
		return &DimensionMismatchError{Want: m.dimension, Got: len(doc.Embedding)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	m.norms = append(m.norms, l2norm(doc.Embedding))
	return nil
}

// Query returns up to k results sorted by descending cosine similarity.
// A zero-norm query embedding scores 0 against every document.
func (m *MemoryVectorIndex) Query(ctx context.Context, embedding []float32, k int) ([]*SearchResult, error) {
	if k <= 0 {
		return nil, InvalidIndexArgumentError("k must be positive")
	}
	if len(embedding) != m.dimension {
		return nil, &DimensionMismatchError{Want: m.dimension, Got: len(embedding)}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryNorm := l2norm(embedding)

	type scored struct {
		pos   int
		score float64
	}
	results := make([]scored, len(m.docs))
	for i, doc := range m.docs {
		score := 0.0
		if queryNorm > 0 && m.norms[i] > 0 {
			score = dot(embedding, doc.Embedding) / (queryNorm * m.norms[i])
		}
		results[i] = scored{pos: i, score: score}
	}

	// Stable sort keeps insertion order for equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]*SearchResult, 0, k)
	for _, r := range results[:k] {
		doc := m.docs[r.pos]
		out = append(out, &SearchResult{
			DocumentID:   doc.ID,
			Text:         doc.Text,
			Score:        float32(r.score),
			SourceFileID: doc.SourceFileID,
		})
	}
	return out, nil
}

// Reset clears all indexed documents
func (m *MemoryVectorIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	m.norms = nil
	return nil
}

// Count returns the number of indexed documents
func (m *MemoryVectorIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// Dimension returns the fixed embedding dimensionality of the index
func (m *MemoryVectorIndex) Dimension() int {
	return m.dimension
}

// Ping always succeeds for the in-memory index
func (m *MemoryVectorIndex) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory index
func (m *MemoryVectorIndex) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2norm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
