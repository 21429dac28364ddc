package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/pkg/retry"
)

const op = "jina.generate"

type JinaProvider struct {
	apiKey    string
	baseURL   string
	model     string
	dimension int
	client    *http.Client
	policy    retry.Policy
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewJinaProvider returns a provider bound to one model and one dimension.
// The client is shared across requests and safe for concurrent use.
// An empty apiKey is a deployment fault and is rejected immediately rather
// than deferred to the first request.
func NewJinaProvider(apiKey, baseURL, model string, dimension int, policy retry.Policy) (*JinaProvider, error) {
	if apiKey == "" {
		return nil, apperror.New(apperror.KindConfiguration, op, "missing Jina API key")
	}
	if baseURL == "" {
		baseURL = "https://api.jina.ai/v1/embeddings"
	}
	if model == "" {
		model = "jina-embeddings-v3"
	}
	return &JinaProvider{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
		policy:    policy,
	}, nil
}

func (p *JinaProvider) Generate(ctx context.Context, text string, task string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.New(apperror.KindInvalidInput, op, "cannot embed empty text")
	}

	var vector []float32
	err := p.policy.Do(ctx, func() error {
		v, err := p.generateOnce(ctx, text, task)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	return vector, err
}

func (p *JinaProvider) generateOnce(ctx context.Context, text, task string) ([]float32, error) {
	// Jina accepts an array of inputs; we wrap the single text.
	reqBody := embeddingRequest{
		Model: p.model,
		Task:  task,
		Input: []string{text},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTransientUpstream, op, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, bodyBytes)
	}

	var jinaResp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, apperror.New(apperror.KindSchemaMismatch, op, "failed to decode response: %v", err)
	}

	if jinaResp.Error != nil {
		return nil, apperror.New(apperror.KindSchemaMismatch, op, "api returned error: %s", jinaResp.Error.Message)
	}

	if len(jinaResp.Data) == 0 {
		return nil, apperror.New(apperror.KindSchemaMismatch, op, "empty embeddings in response")
	}

	vector := jinaResp.Data[0].Embedding
	if len(vector) != p.dimension {
		// Proceeding with a malformed vector would poison every similarity
		// comparison downstream, so this is fatal for the request.
		return nil, apperror.New(apperror.KindSchemaMismatch, op,
			"expected %d dimensions, got %d", p.dimension, len(vector))
	}

	return vector, nil
}

func classifyStatus(status int, body []byte) error {
	detail := upstreamDetail(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperror.New(apperror.KindConfiguration, op, "auth rejected (status %d): %s", status, detail)
	case status == http.StatusTooManyRequests || status >= 500:
		return apperror.New(apperror.KindTransientUpstream, op, "upstream unavailable (status %d): %s", status, detail)
	default:
		return apperror.New(apperror.KindSchemaMismatch, op, "unexpected status %d: %s", status, detail)
	}
}

// upstreamDetail pulls the `detail` field from an error body, falling back to
// the raw text so diagnostics survive non-JSON responses.
func upstreamDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(body)
}
