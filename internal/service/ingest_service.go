package service

import (
	"context"
	"encoding/json"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/textsplit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IIngestService feeds the knowledge store. Publishing is cheap and
// non-blocking; the consumer embeds and persists in the background so HTTP
// callers never wait on the embedding API.
type IIngestService interface {
	Publish(ctx context.Context, req *dto.IngestChunkRequest) error
	Consume(ctx context.Context) error
}

type ingestService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	chunkRepo contract.KnowledgeChunkRepository
	embedder  embedding.Provider
	logger    logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunkRepo contract.KnowledgeChunkRepository,
	embedder embedding.Provider,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		pubSub:    pubSub,
		topicName: topicName,
		chunkRepo: chunkRepo,
		embedder:  embedder,
		logger:    log,
	}
}

func (s *ingestService) Publish(ctx context.Context, req *dto.IngestChunkRequest) error {
	payload, err := json.Marshal(dto.PublishIngestChunkMessage{
		SourceType: req.SourceType,
		SourceId:   req.SourceId,
		Content:    req.Content,
	})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(s.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestChunkMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ingest", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages would retry forever
		return
	}

	if payload.SourceType == "" || payload.SourceId == "" || payload.Content == "" {
		s.logger.Error("ingest", "incomplete chunk payload", map[string]interface{}{
			"source_type": payload.SourceType,
			"source_id":   payload.SourceId,
		})
		msg.Ack()
		return
	}

	// Oversized content is split so one fact buried deep in a long document
	// still surfaces on its own. Stored chunks must use the passage task mode;
	// query vectors use the query mode, and only that pairing is comparable
	// under cosine.
	parts := textsplit.Split(payload.Content, constant.DefaultIngestChunkRunes, constant.DefaultIngestChunkOverlap)
	chunks := make([]*entity.KnowledgeChunk, 0, len(parts))
	for _, part := range parts {
		vector, err := s.embedder.Generate(ctx, part, embedding.TaskPassage)
		if err != nil {
			s.logger.Error("ingest", "embedding failed", map[string]interface{}{
				"source_id": payload.SourceId,
				"error":     err.Error(),
				"kind":      apperror.KindOf(err).String(),
			})
			if apperror.Retryable(err) {
				msg.Nack()
			} else {
				msg.Ack()
			}
			return
		}
		chunks = append(chunks, &entity.KnowledgeChunk{
			SourceType: payload.SourceType,
			SourceId:   payload.SourceId,
			Content:    part,
			Embedding:  vector,
		})
	}

	// Re-ingesting a source replaces its chunks instead of stacking duplicates.
	if err := s.chunkRepo.DeleteBySourceId(ctx, payload.SourceId); err != nil {
		s.logger.Error("ingest", "failed to clear previous chunks", map[string]interface{}{
			"source_id": payload.SourceId,
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}

	if err := s.chunkRepo.CreateBulk(ctx, chunks); err != nil {
		s.logger.Error("ingest", "failed to persist chunks", map[string]interface{}{
			"source_id": payload.SourceId,
			"error":     err.Error(),
		})
		msg.Nack()
		return
	}

	s.logger.Info("ingest", "chunks embedded and stored", map[string]interface{}{
		"source_type": payload.SourceType,
		"source_id":   payload.SourceId,
		"chunks":      len(chunks),
	})
	msg.Ack()
}
