package service

import (
	"context"
	"strings"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/classify"
	"portfolio-assistant-be/pkg/rag/contextbuild"
	"portfolio-assistant-be/pkg/rag/rank"
	"portfolio-assistant-be/pkg/rag/response"
)

// AskResult is either a complete plain-text reply or a live token stream,
// never both.
type AskResult struct {
	Reply  string
	Stream <-chan llm.Chunk
}

func (r *AskResult) IsStream() bool {
	return r.Stream != nil
}

// IAskService is the single entry point of the question-answering pipeline:
// classify, embed, retrieve, rank, assemble, generate.
type IAskService interface {
	Ask(ctx context.Context, question string) (*AskResult, error)
}

type askService struct {
	chunkRepo  contract.KnowledgeChunkRepository
	embedder   embedding.Provider
	generator  *response.Generator
	classifier *classify.Classifier
	builder    *contextbuild.Builder
	retrieval  config.RetrievalConfig
	logger     logger.ILogger
}

func NewAskService(
	chunkRepo contract.KnowledgeChunkRepository,
	embedder embedding.Provider,
	generator *response.Generator,
	retrieval config.RetrievalConfig,
	log logger.ILogger,
) IAskService {
	return &askService{
		chunkRepo:  chunkRepo,
		embedder:   embedder,
		generator:  generator,
		classifier: classify.NewClassifier(),
		builder:    contextbuild.NewBuilder(retrieval.MaxContextChars),
		retrieval:  retrieval,
		logger:     log,
	}
}

// Ask runs one question through the pipeline. The error return is reserved
// for invalid input; every internal failure is logged with full detail and
// folded into a user-safe fallback reply, so raw upstream errors never reach
// the transport layer.
func (s *askService) Ask(ctx context.Context, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "ask", "question must not be empty")
	}

	// Small talk never reaches the embedding API.
	if reply, ok := s.classifier.Classify(question); ok {
		s.logger.Debug("ask", "casual query short-circuited", map[string]interface{}{"question": question})
		return &AskResult{Reply: reply}, nil
	}

	queryVector, err := s.embedder.Generate(ctx, question, embedding.TaskQuery)
	if err != nil {
		s.logger.Error("ask", "query embedding failed", map[string]interface{}{
			"error": err.Error(),
			"kind":  apperror.KindOf(err).String(),
		})
		return &AskResult{Reply: constant.ErrorReply}, nil
	}

	ranked, err := s.retrieve(ctx, queryVector)
	if err != nil {
		s.logger.Error("ask", "retrieval failed", map[string]interface{}{"error": err.Error()})
		return &AskResult{Reply: constant.ErrorReply}, nil
	}

	contextBlock := s.builder.Build(ranked)
	if contextBlock == "" {
		s.logger.Info("ask", "no relevant context found", map[string]interface{}{"question": question})
		return &AskResult{Reply: constant.NoContextReply}, nil
	}

	stream, err := s.generator.Stream(ctx, contextBlock, question)
	if err != nil {
		s.logger.Error("ask", "generation failed to start", map[string]interface{}{
			"error": err.Error(),
			"kind":  apperror.KindOf(err).String(),
		})
		return &AskResult{Reply: constant.ErrorReply}, nil
	}

	return &AskResult{Stream: stream}, nil
}

// retrieve produces the ranked candidates, either by scanning every stored
// chunk in process or by delegating ranking to pgvector. Both paths honor
// TopK and the match threshold.
func (s *askService) retrieve(ctx context.Context, queryVector []float32) ([]rank.ScoredChunk, error) {
	if s.retrieval.SearchMode == constant.SearchModeStore {
		scored, err := s.chunkRepo.SearchSimilarWithScore(ctx, queryVector, s.retrieval.TopK, s.retrieval.MatchThreshold)
		if err != nil {
			return nil, err
		}
		ranked := make([]rank.ScoredChunk, len(scored))
		for i, sc := range scored {
			ranked[i] = rank.ScoredChunk{Chunk: sc.Chunk, Score: sc.Similarity}
		}
		return ranked, nil
	}

	candidates, err := s.chunkRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ranked := rank.TopK(queryVector, candidates, s.retrieval.TopK)
	// Drop weak matches so an unrelated question falls through to the
	// no-context reply instead of hallucination bait.
	filtered := ranked[:0]
	for _, sc := range ranked {
		if sc.Score >= s.retrieval.MatchThreshold {
			filtered = append(filtered, sc)
		}
	}
	return filtered, nil
}
