package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"portfolio-assistant-be/internal/constant"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type EmbeddingConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

type LLMConfig struct {
	Provider  string // "openai", "groq", "openrouter" (all OpenAI-compatible)
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type RetrievalConfig struct {
	TopK            int
	MatchThreshold  float64
	MaxContextChars int
	SearchMode      string // "scan" or "store"
	CacheTTLSeconds int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Embedding: EmbeddingConfig{
			APIKey:    getEnv("JINA_API_KEY", ""),
			BaseURL:   getEnv("JINA_BASE_URL", "https://api.jina.ai/v1/embeddings"),
			Model:     getEnv("EMBEDDING_MODEL", "jina-embeddings-v3"),
			Dimension: getEnvAsInt("EMBEDDING_DIMENSION", constant.DefaultEmbeddingDimension),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "groq"),
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:     getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
			MaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 500),
		},
		Retrieval: RetrievalConfig{
			TopK:            getEnvAsInt("TOP_K", constant.DefaultTopK),
			MatchThreshold:  getEnvAsFloat("MATCH_THRESHOLD", constant.DefaultMatchThreshold),
			MaxContextChars: getEnvAsInt("MAX_CONTEXT_CHARS", constant.DefaultMaxContextChars),
			SearchMode:      getEnv("SEARCH_MODE", constant.SearchModeScan),
			CacheTTLSeconds: getEnvAsInt("CHUNK_CACHE_TTL_SECONDS", 300),
		},
	}
}

// Validate fails fast on anything the pipeline cannot run without. A missing
// embedding key must never degrade into zero-vector searches at request time.
func (c *Config) Validate() error {
	if c.Database.Connection == "" {
		return fmt.Errorf("config: DB_CONNECTION_STRING is required")
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("config: JINA_API_KEY is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: LLM_API_KEY is required")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("config: EMBEDDING_DIMENSION must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("config: TOP_K must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.SearchMode != constant.SearchModeScan && c.Retrieval.SearchMode != constant.SearchModeStore {
		return fmt.Errorf("config: SEARCH_MODE must be %q or %q, got %q",
			constant.SearchModeScan, constant.SearchModeStore, c.Retrieval.SearchMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
