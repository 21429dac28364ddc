package response

import (
	"context"
	"fmt"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/pkg/llm"
)

// Generator produces the grounded answer stream: a fixed system instruction
// plus one user message carrying the labelled context and question.
type Generator struct {
	provider llm.Provider
	logger   logger.ILogger
}

func NewGenerator(provider llm.Provider, log logger.ILogger) *Generator {
	return &Generator{provider: provider, logger: log}
}

// Stream starts a streamed completion grounded on contextBlock. The returned
// channel closes when the model finishes or ctx is cancelled; cancellation
// propagates to the provider so the upstream connection is released.
func (g *Generator) Stream(ctx context.Context, contextBlock, question string) (<-chan llm.Chunk, error) {
	messages := g.buildMessages(contextBlock, question)

	stream, err := g.provider.ChatStream(ctx, messages)
	if err != nil {
		g.logger.Error("response", "failed to start completion stream", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return stream, nil
}

func (g *Generator) buildMessages(contextBlock, question string) []llm.Message {
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.AssistantSystemPrompt},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)},
	}
}
