package factory

import (
	"fmt"

	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/llm/openaicompat"
)

// NewProvider builds the configured LLM backend. Only OpenAI-compatible
// endpoints are supported; the provider type exists so another backend can
// slot in without touching call sites.
func NewProvider(providerType, apiKey, baseURL, model string, maxTokens int) (llm.Provider, error) {
	switch providerType {
	case "", "openai", "groq", "openrouter":
		return openaicompat.NewProvider(apiKey, baseURL, model, maxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
