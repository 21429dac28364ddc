package embedding

import "context"

// Task modes passed to the embedding API. Stored chunks and incoming queries
// are embedded with different modes but stay comparable under cosine
// similarity, so every stored vector must use TaskPassage and every query
// vector TaskQuery.
const (
	TaskPassage = "retrieval.passage"
	TaskQuery   = "retrieval.query"
)

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string, task string) ([]float32, error)
}
