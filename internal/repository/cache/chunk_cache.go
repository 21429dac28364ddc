package cache

import (
	"context"
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/contract"

	gocache "github.com/patrickmn/go-cache"
)

const allChunksKey = "knowledge_chunks:all"

// CachedChunkRepository decorates the chunk repository with a TTL cache over
// FindAll. The ask path does a full scan per question; at portfolio scale the
// whole chunk set fits in memory, so one cached read replaces a database
// round-trip per request. Writes invalidate the cache.
type CachedChunkRepository struct {
	inner contract.KnowledgeChunkRepository
	store *gocache.Cache
}

func NewCachedChunkRepository(inner contract.KnowledgeChunkRepository, ttl time.Duration) *CachedChunkRepository {
	return &CachedChunkRepository{
		inner: inner,
		store: gocache.New(ttl, 2*ttl),
	}
}

func (r *CachedChunkRepository) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error {
	if err := r.inner.Create(ctx, chunk); err != nil {
		return err
	}
	r.store.Delete(allChunksKey)
	return nil
}

func (r *CachedChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if err := r.inner.CreateBulk(ctx, chunks); err != nil {
		return err
	}
	r.store.Delete(allChunksKey)
	return nil
}

func (r *CachedChunkRepository) DeleteBySourceId(ctx context.Context, sourceId string) error {
	if err := r.inner.DeleteBySourceId(ctx, sourceId); err != nil {
		return err
	}
	r.store.Delete(allChunksKey)
	return nil
}

func (r *CachedChunkRepository) FindAll(ctx context.Context) ([]*entity.KnowledgeChunk, error) {
	if cached, found := r.store.Get(allChunksKey); found {
		return cached.([]*entity.KnowledgeChunk), nil
	}

	chunks, err := r.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	r.store.Set(allChunksKey, chunks, gocache.DefaultExpiration)
	return chunks, nil
}

func (r *CachedChunkRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}

func (r *CachedChunkRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeChunk, error) {
	// Store-side search is already one indexed query; not worth caching
	// per-query vectors.
	return r.inner.SearchSimilarWithScore(ctx, embedding, limit, threshold)
}
