package contextbuild

import (
	"fmt"
	"strings"

	"portfolio-assistant-be/pkg/rag/rank"
)

// Builder turns ranked chunks into the single context block handed to the
// model. Each chunk is tagged with its provenance so answers can name where
// a fact came from.
type Builder struct {
	maxChars int // 0 means unbounded
}

func NewBuilder(maxChars int) *Builder {
	return &Builder{maxChars: maxChars}
}

// Build formats each chunk as "[source_type:source_id] content", joined by
// blank lines, preserving rank order. Chunks that would push the block past
// the character budget are dropped whole; a provenance tag is never split
// from its content. An empty input yields an empty string, which the
// orchestrator treats as "no relevant information".
func (b *Builder) Build(chunks []rank.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, sc := range chunks {
		block := fmt.Sprintf("[%s:%s] %s", sc.Chunk.SourceType, sc.Chunk.SourceId, sc.Chunk.Content)

		sep := 0
		if sb.Len() > 0 {
			sep = 2 // "\n\n"
		}
		if b.maxChars > 0 && sb.Len()+sep+len(block) > b.maxChars {
			break
		}

		if sep > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(block)
	}
	return sb.String()
}
