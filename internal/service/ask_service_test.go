package service

import (
	"context"
	"errors"
	"testing"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls  int
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, task string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeChunkRepo struct {
	findAllCalls int
	chunks       []*entity.KnowledgeChunk
	err          error
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error { return nil }
func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	return nil
}
func (f *fakeChunkRepo) DeleteBySourceId(ctx context.Context, sourceId string) error { return nil }
func (f *fakeChunkRepo) Count(ctx context.Context) (int64, error)                    { return 0, nil }

func (f *fakeChunkRepo) FindAll(ctx context.Context) ([]*entity.KnowledgeChunk, error) {
	f.findAllCalls++
	return f.chunks, f.err
}

func (f *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeChunk, error) {
	return nil, nil
}

type fakeLLM struct {
	streamCalls int
	chunks      []string
	err         error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.Chunk, error) {
	f.streamCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan llm.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- llm.Chunk{Content: c}
	}
	close(out)
	return out, nil
}

func retrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{
		TopK:            5,
		MatchThreshold:  0.3,
		MaxContextChars: 8000,
		SearchMode:      constant.SearchModeScan,
	}
}

func newTestService(repo *fakeChunkRepo, embedder *fakeEmbedder, provider *fakeLLM) IAskService {
	gen := response.NewGenerator(provider, logger.NewNop())
	return NewAskService(repo, embedder, gen, retrievalConfig(), logger.NewNop())
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := newTestService(&fakeChunkRepo{}, &fakeEmbedder{}, &fakeLLM{})

	_, err := svc.Ask(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidInput))
}

func TestAskShortCircuitsCasualQuestions(t *testing.T) {
	embedder := &fakeEmbedder{}
	repo := &fakeChunkRepo{}
	svc := newTestService(repo, embedder, &fakeLLM{})

	result, err := svc.Ask(context.Background(), "hello there")
	require.NoError(t, err)
	assert.False(t, result.IsStream())
	assert.NotEmpty(t, result.Reply)

	// The whole retrieval pipeline must stay untouched.
	assert.Zero(t, embedder.calls, "embedding API called for small talk")
	assert.Zero(t, repo.findAllCalls, "store queried for small talk")
}

func TestAskFallsBackWhenNoContextFound(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	repo := &fakeChunkRepo{} // empty store
	provider := &fakeLLM{chunks: []string{"never"}}
	svc := newTestService(repo, embedder, provider)

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	assert.Equal(t, constant.NoContextReply, result.Reply)
	assert.Zero(t, provider.streamCalls, "LLM must not be called without grounding context")
}

func TestAskFiltersWeakMatchesToNoContext(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	// Orthogonal chunk scores 0, below the 0.3 threshold.
	repo := &fakeChunkRepo{chunks: []*entity.KnowledgeChunk{
		{SourceType: "project", SourceId: "p", Content: "unrelated", Embedding: []float32{0, 1}},
	}}
	provider := &fakeLLM{chunks: []string{"never"}}
	svc := newTestService(repo, embedder, provider)

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	assert.Equal(t, constant.NoContextReply, result.Reply)
	assert.Zero(t, provider.streamCalls)
}

func TestAskConvertsEmbeddingFailureToSafeReply(t *testing.T) {
	embedder := &fakeEmbedder{err: apperror.New(apperror.KindTransientUpstream, "jina.generate", "timeout")}
	svc := newTestService(&fakeChunkRepo{}, embedder, &fakeLLM{})

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	assert.Equal(t, constant.ErrorReply, result.Reply)
}

func TestAskConvertsStoreFailureToSafeReply(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	repo := &fakeChunkRepo{err: errors.New("connection refused")}
	svc := newTestService(repo, embedder, &fakeLLM{})

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	assert.Equal(t, constant.ErrorReply, result.Reply)
	assert.NotContains(t, result.Reply, "connection refused", "raw upstream error leaked to the user")
}

func TestAskConvertsGenerationFailureToSafeReply(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	repo := &fakeChunkRepo{chunks: []*entity.KnowledgeChunk{
		{SourceType: "project", SourceId: "p", Content: "Built a thing.", Embedding: []float32{1, 0}},
	}}
	provider := &fakeLLM{err: apperror.New(apperror.KindGenerationFailed, "llm.chat", "upstream 500")}
	svc := newTestService(repo, embedder, provider)

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	assert.Equal(t, constant.ErrorReply, result.Reply)
}

func TestAskStreamsGroundedAnswer(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	repo := &fakeChunkRepo{chunks: []*entity.KnowledgeChunk{
		{SourceType: "project", SourceId: "p", Content: "Built a portfolio site.", Embedding: []float32{1, 0}},
	}}
	provider := &fakeLLM{chunks: []string{"Hel", "lo", " world"}}
	svc := newTestService(repo, embedder, provider)

	result, err := svc.Ask(context.Background(), "what projects have you built?")
	require.NoError(t, err)
	require.True(t, result.IsStream())

	var got []string
	for c := range result.Stream {
		require.NoError(t, c.Err)
		got = append(got, c.Content)
	}
	assert.Equal(t, []string{"Hel", "lo", " world"}, got)
}
