package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Setup
// ============================================================================

func newTestDoc(id string, embedding []float32) *Document {
	return &Document{
		ID:        id,
		Text:      "text for " + id,
		Embedding: embedding,
	}
}

func setupTestIndex(t *testing.T) *MemoryVectorIndex {
	return NewMemoryVectorIndex(3)
}

// ============================================================================
// Tests
// ============================================================================

func TestMemoryVectorIndex_AddAndCount(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	assert.NoError(t, idx.Add(ctx, newTestDoc("a", []float32{1, 0, 0})))
	assert.NoError(t, idx.Add(ctx, newTestDoc("b", []float32{0, 1, 0})))

	count, err := idx.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, idx.Dimension())
}

func TestMemoryVectorIndex_AddDimensionMismatch(t *testing.T) {
	idx := setupTestIndex(t)

	err := idx.Add(context.Background(), newTestDoc("a", []float32{1, 0}))
	assert.Error(t, err)

	var dimErr *DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 3, dimErr.Want)
	assert.Equal(t, 2, dimErr.Got)
}

func TestMemoryVectorIndex_AddInvalidDocument(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	assert.Error(t, idx.Add(ctx, nil))
	assert.Error(t, idx.Add(ctx, &Document{ID: "", Text: "x", Embedding: []float32{1, 0, 0}}))
	assert.Error(t, idx.Add(ctx, &Document{ID: "a", Text: "", Embedding: []float32{1, 0, 0}}))
}

func TestMemoryVectorIndex_QueryOrdering(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	// b is most similar to the query, then a, then c
	assert.NoError(t, idx.Add(ctx, newTestDoc("a", []float32{1, 1, 0})))
	assert.NoError(t, idx.Add(ctx, newTestDoc("b", []float32{1, 0, 0})))
	assert.NoError(t, idx.Add(ctx, newTestDoc("c", []float32{0, 0, 1})))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "b", results[0].DocumentID)
	assert.Equal(t, "a", results[1].DocumentID)
	assert.Equal(t, "c", results[2].DocumentID)

	// Scores are descending
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestMemoryVectorIndex_QueryTieBreakInsertionOrder(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	// Identical embeddings score identically; earlier insertion wins
	assert.NoError(t, idx.Add(ctx, newTestDoc("first", []float32{1, 0, 0})))
	assert.NoError(t, idx.Add(ctx, newTestDoc("second", []float32{1, 0, 0})))
	assert.NoError(t, idx.Add(ctx, newTestDoc("third", []float32{1, 0, 0})))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "first", results[0].DocumentID)
	assert.Equal(t, "second", results[1].DocumentID)
	assert.Equal(t, "third", results[2].DocumentID)
}

func TestMemoryVectorIndex_QueryKLargerThanCorpus(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	assert.NoError(t, idx.Add(ctx, newTestDoc("a", []float32{1, 0, 0})))

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 10)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemoryVectorIndex_QueryInvalidK(t *testing.T) {
	idx := setupTestIndex(t)

	_, err := idx.Query(context.Background(), []float32{1, 0, 0}, 0)
	assert.Error(t, err)

	_, err = idx.Query(context.Background(), []float32{1, 0, 0}, -1)
	assert.Error(t, err)
}

func TestMemoryVectorIndex_QueryEmptyIndex(t *testing.T) {
	idx := setupTestIndex(t)

	results, err := idx.Query(context.Background(), []float32{1, 0, 0}, 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryVectorIndex_QueryZeroNormEmbedding(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	assert.NoError(t, idx.Add(ctx, newTestDoc("a", []float32{1, 0, 0})))

	// A zero vector is not an error, it just scores 0 everywhere
	results, err := idx.Query(ctx, []float32{0, 0, 0}, 1)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, float32(0), results[0].Score)
}

func TestMemoryVectorIndex_QueryDimensionMismatch(t *testing.T) {
	idx := setupTestIndex(t)

	_, err := idx.Query(context.Background(), []float32{1, 0}, 1)
	var dimErr *DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}

func TestMemoryVectorIndex_Reset(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	assert.NoError(t, idx.Add(ctx, newTestDoc("a", []float32{1, 0, 0})))
	assert.NoError(t, idx.Reset(ctx))

	count, err := idx.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	results, err := idx.Query(ctx, []float32{1, 0, 0}, 1)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryVectorIndex_ConcurrentAddAndQuery(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = idx.Add(ctx, newTestDoc(fmt.Sprintf("doc-%d", i), []float32{1, 0, 0}))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = idx.Query(ctx, []float32{1, 0, 0}, 5)
		}()
	}
	wg.Wait()

	count, err := idx.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 20, count)
}
