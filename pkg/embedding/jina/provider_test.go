package jina

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-assistant-be/internal/apperror"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/retry"
)

func fastPolicy(attempts uint64) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func embeddingJSON(dim int) string {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = 0.1
	}
	b, _ := json.Marshal(map[string]interface{}{
		"data": []map[string]interface{}{{"object": "embedding", "index": 0, "embedding": vec}},
	})
	return string(b)
}

func TestGenerateSendsTaskMode(t *testing.T) {
	var gotTask string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotTask = req.Task
		fmt.Fprint(w, embeddingJSON(4))
	}))
	defer srv.Close()

	p, err := NewJinaProvider("key", srv.URL, "jina-embeddings-v3", 4, fastPolicy(1))
	if err != nil {
		t.Fatalf("NewJinaProvider: %v", err)
	}

	vec, err := p.Generate(context.Background(), "what are your skills", embedding.TaskQuery)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("vector length = %d, want 4", len(vec))
	}
	if gotTask != embedding.TaskQuery {
		t.Errorf("task = %q, want %q", gotTask, embedding.TaskQuery)
	}
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	p, err := NewJinaProvider("key", "http://unused", "m", 4, fastPolicy(1))
	if err != nil {
		t.Fatalf("NewJinaProvider: %v", err)
	}

	_, err = p.Generate(context.Background(), "   ", embedding.TaskQuery)
	if !apperror.IsKind(err, apperror.KindInvalidInput) {
		t.Errorf("Generate(empty) kind = %v, want invalid_input", apperror.KindOf(err))
	}
}

func TestGenerateRejectsDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, embeddingJSON(3)) // one short of the configured 4
	}))
	defer srv.Close()

	p, _ := NewJinaProvider("key", srv.URL, "m", 4, fastPolicy(1))
	_, err := p.Generate(context.Background(), "hello", embedding.TaskPassage)
	if !apperror.IsKind(err, apperror.KindSchemaMismatch) {
		t.Errorf("kind = %v, want schema_mismatch", apperror.KindOf(err))
	}
}

func TestGenerateClassifiesAuthFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid api key"}`)
	}))
	defer srv.Close()

	p, _ := NewJinaProvider("bad-key", srv.URL, "m", 4, fastPolicy(3))
	_, err := p.Generate(context.Background(), "hello", embedding.TaskQuery)
	if !apperror.IsKind(err, apperror.KindConfiguration) {
		t.Errorf("kind = %v, want configuration", apperror.KindOf(err))
	}
	if calls != 1 {
		t.Errorf("calls = %d, auth failures must not be retried", calls)
	}
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"detail":"rate limit"}`)
			return
		}
		fmt.Fprint(w, embeddingJSON(4))
	}))
	defer srv.Close()

	p, _ := NewJinaProvider("key", srv.URL, "m", 4, fastPolicy(2))
	vec, err := p.Generate(context.Background(), "hello", embedding.TaskQuery)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("vector length = %d, want 4", len(vec))
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls)
	}
}

func TestNewJinaProviderRequiresKey(t *testing.T) {
	_, err := NewJinaProvider("", "http://x", "m", 4, fastPolicy(1))
	if !apperror.IsKind(err, apperror.KindConfiguration) {
		t.Errorf("kind = %v, want configuration", apperror.KindOf(err))
	}
}
