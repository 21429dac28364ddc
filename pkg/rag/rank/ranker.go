package rank

import (
	"math"
	"sort"

	"portfolio-assistant-be/internal/entity"
)

// ScoredChunk pairs a stored chunk with its cosine similarity against the
// current query vector. Request-scoped; produced here, consumed by the
// context builder.
type ScoredChunk struct {
	Chunk *entity.KnowledgeChunk
	Score float64
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero-norm or
// length-mismatched pair scores -1 so it sorts last instead of producing NaN
// and shuffling the order unpredictably.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every candidate against query and returns at most k results,
// descending by score. Ties keep the original candidate order. Brute force
// over the full set; fine at portfolio scale (tens to low hundreds of
// chunks), swap in the store-side search beyond that.
func TopK(query []float32, candidates []*entity.KnowledgeChunk, k int) []ScoredChunk {
	if len(candidates) == 0 || k <= 0 {
		return []ScoredChunk{}
	}

	scored := make([]ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ScoredChunk{Chunk: c, Score: Cosine(query, c.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
