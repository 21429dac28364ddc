package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is one stored unit of retrievable knowledge about the site
// owner: the raw prose that was embedded plus its vector. Chunks are written
// by ingestion and read-only on the ask path.
type KnowledgeChunk struct {
	Id         uuid.UUID
	SourceType string // "project", "certification", "about_me_fact", "meta_fact"
	SourceId   string // originating record key; equals Id when no natural key exists
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Validate rejects partial rows at the store boundary so nothing downstream
// has to cope with half-filled chunks.
func (c *KnowledgeChunk) Validate(dimension int) error {
	if c.SourceType == "" {
		return fmt.Errorf("chunk %s: missing source_type", c.Id)
	}
	if c.SourceId == "" {
		return fmt.Errorf("chunk %s: missing source_id", c.Id)
	}
	if c.Content == "" {
		return fmt.Errorf("chunk %s: missing content", c.Id)
	}
	if dimension > 0 && len(c.Embedding) != dimension {
		return fmt.Errorf("chunk %s: embedding has %d dimensions, store requires %d",
			c.Id, len(c.Embedding), dimension)
	}
	return nil
}
