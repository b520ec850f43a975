package services

import "context"

// Embedder converts text into a fixed-dimension vector. All vectors
// returned by an embedder have exactly Dimension() entries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
