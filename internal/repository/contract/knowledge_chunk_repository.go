package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
)

// ScoredKnowledgeChunk wraps a chunk with its similarity score
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64 // -1.0 to 1.0 (1.0 = identical direction)
}

type KnowledgeChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KnowledgeChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	// DeleteBySourceId removes every chunk of one source so re-ingestion
	// replaces instead of duplicating.
	DeleteBySourceId(ctx context.Context, sourceId string) error
	FindAll(ctx context.Context) ([]*entity.KnowledgeChunk, error)
	Count(ctx context.Context) (int64, error)
	// SearchSimilarWithScore pushes ranking into pgvector: rows above
	// threshold, pre-ranked, at most limit. Contract-equivalent to ranking
	// FindAll in process.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredKnowledgeChunk, error)
}
