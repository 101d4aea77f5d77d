package model

import "context"

// Embedder turns text into a fixed-length vector. Implementations do not
// retry; a failing provider surfaces as types.ErrEmbedding to the caller.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
