package implementation

import (
	"context"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/mapper"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeChunkRepositoryImpl struct {
	db        *gorm.DB
	mapper    *mapper.KnowledgeChunkMapper
	dimension int
}

func NewKnowledgeChunkRepository(db *gorm.DB, dimension int) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{
		db:        db,
		mapper:    mapper.NewKnowledgeChunkMapper(),
		dimension: dimension,
	}
}

func (r *KnowledgeChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error {
	if err := chunk.Validate(r.dimension); err != nil {
		return apperror.Wrap(apperror.KindSchemaMismatch, "chunkrepo.create", err)
	}
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if err := c.Validate(r.dimension); err != nil {
			return apperror.Wrap(apperror.KindSchemaMismatch, "chunkrepo.create_bulk", err)
		}
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KnowledgeChunkRepositoryImpl) DeleteBySourceId(ctx context.Context, sourceId string) error {
	return r.db.WithContext(ctx).Where("source_id = ?", sourceId).Delete(&model.KnowledgeChunk{}).Error
}

func (r *KnowledgeChunkRepositoryImpl) FindAll(ctx context.Context) ([]*entity.KnowledgeChunk, error) {
	var models []*model.KnowledgeChunk
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.KnowledgeChunk, 0, len(models))
	for _, m := range models {
		e := r.mapper.ToEntity(m)
		// Partial rows stop here; downstream never sees half-filled chunks.
		if err := e.Validate(r.dimension); err != nil {
			return nil, apperror.Wrap(apperror.KindSchemaMismatch, "chunkrepo.find_all", err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *KnowledgeChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.KnowledgeChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks store-side. pgvector's <=> is cosine distance,
// so similarity = 1 - distance.
func (r *KnowledgeChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ToEntity(&res.KnowledgeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
