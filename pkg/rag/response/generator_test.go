package response

import (
	"context"
	"strings"
	"testing"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/pkg/llm"
)

type fakeProvider struct {
	gotMessages []llm.Message
	chunks      []string
	err         error
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.gotMessages = history
	return strings.Join(f.chunks, ""), f.err
}

func (f *fakeProvider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.Chunk, error) {
	f.gotMessages = history
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

func TestStreamBuildsTwoMessageExchange(t *testing.T) {
	fake := &fakeProvider{chunks: []string{"answer"}}
	g := NewGenerator(fake, logger.NewNop())

	_, err := g.Stream(context.Background(), "[project:x] Built X.", "what did you build?")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if len(fake.gotMessages) != 2 {
		t.Fatalf("messages = %d, want 2", len(fake.gotMessages))
	}
	if fake.gotMessages[0].Role != constant.ChatMessageRoleSystem {
		t.Errorf("first role = %q, want system", fake.gotMessages[0].Role)
	}
	user := fake.gotMessages[1]
	if user.Role != constant.ChatMessageRoleUser {
		t.Errorf("second role = %q, want user", user.Role)
	}
	if !strings.Contains(user.Content, "Context:\n[project:x] Built X.") {
		t.Errorf("user message missing labelled context: %q", user.Content)
	}
	if !strings.Contains(user.Content, "Question: what did you build?") {
		t.Errorf("user message missing labelled question: %q", user.Content)
	}
}

func TestStreamPassesChunksThrough(t *testing.T) {
	fake := &fakeProvider{chunks: []string{"Hel", "lo", " world"}}
	g := NewGenerator(fake, logger.NewNop())

	stream, err := g.Stream(context.Background(), "ctx", "q")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var got []string
	for c := range stream {
		got = append(got, c.Content)
	}
	want := []string{"Hel", "lo", " world"}
	if len(got) != len(want) {
		t.Fatalf("chunks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
