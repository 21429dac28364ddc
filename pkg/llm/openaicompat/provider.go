package openaicompat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/pkg/llm"
)

const op = "llm.chat"

// Provider speaks the OpenAI chat-completions wire format, which Groq,
// OpenRouter, Together and friends all accept. One Provider is shared
// process-wide; it holds no per-request state.
type Provider struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// streamEvent is one SSE payload of a streamed completion. Only the textual
// delta matters; role and metadata fields are ignored.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func NewProvider(apiKey, baseURL, model string, maxTokens int) (*Provider, error) {
	if apiKey == "" {
		return nil, apperror.New(apperror.KindConfiguration, op, "missing LLM API key")
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Provider{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		// Generous timeout: covers the whole streamed response, not just
		// the first byte.
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	resp, err := p.send(ctx, history, false, options...)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindTransientUpstream, op, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", apperror.New(apperror.KindGenerationFailed, op, "failed to decode response: %v", err)
	}
	if chatResp.Error != nil {
		return "", apperror.New(apperror.KindGenerationFailed, op, "api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", apperror.New(apperror.KindGenerationFailed, op, "empty choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.Chunk, error) {
	resp, err := p.send(ctx, history, true, options...)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.Chunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}

			var event streamEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				// Skip malformed keep-alive frames rather than killing the stream.
				continue
			}
			if len(event.Choices) == 0 {
				continue
			}
			delta := event.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			select {
			case out <- llm.Chunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case out <- llm.Chunk{Err: apperror.Wrap(apperror.KindGenerationFailed, op, err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

func (p *Provider) send(ctx context.Context, history []llm.Message, stream bool, options ...llm.Option) (*http.Response, error) {
	opts := &llm.Options{
		Model:     p.model,
		MaxTokens: p.maxTokens,
	}
	for _, o := range options {
		o(opts)
	}

	messages := make([]wireMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, wireMessage{Role: m.Role, Content: m.Content})
	}

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      stream,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTransientUpstream, op, err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, classifyStatus(resp.StatusCode, bodyBytes)
	}

	return resp, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperror.New(apperror.KindConfiguration, op, "auth rejected (status %d): %s", status, string(body))
	case status == http.StatusTooManyRequests || status >= 500:
		return apperror.New(apperror.KindTransientUpstream, op, "upstream unavailable (status %d): %s", status, string(body))
	default:
		return apperror.New(apperror.KindGenerationFailed, op, "unexpected status %d: %s", status, string(body))
	}
}
