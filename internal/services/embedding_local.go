package services

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultEmbeddingDimension is the vector size used by the local embedder
const DefaultEmbeddingDimension = 256

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashingEmbedder produces deterministic bag-of-words vectors by
// hashing tokens into a fixed number of buckets and L2-normalizing the
// counts. It needs no external service, which makes it the default
// when no embedding endpoint is configured.
type HashingEmbedder struct {
	dimension int
}

// NewHashingEmbedder creates a local embedder with the given dimension.
// Non-positive dimensions fall back to the default.
func NewHashingEmbedder(dimension int) *HashingEmbedder {
	if dimension <= 0 {
		dimension = DefaultEmbeddingDimension
	}
	return &HashingEmbedder{dimension: dimension}
}

// Embed hashes the text's tokens into buckets. Empty or whitespace-only
// text yields the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dimension)

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vector, nil
	}

	for _, token := range tokens {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(e.dimension)]++
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}
	return vector, nil
}

// Dimension returns the vector size
func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}
