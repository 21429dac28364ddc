package bootstrap

import (
	"log"
	"time"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/controller"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/cache"
	"portfolio-assistant-be/internal/repository/implementation"
	"portfolio-assistant-be/internal/service"
	"portfolio-assistant-be/pkg/embedding/jina"
	"portfolio-assistant-be/pkg/llm/factory"
	"portfolio-assistant-be/pkg/rag/response"
	"portfolio-assistant-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController    controller.IAskController
	IngestController controller.IIngestController
	HealthController controller.IHealthController

	// Background services (exposed for main.go to run)
	IngestService service.IIngestService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus for ingestion. In-process; nothing here needs an external broker.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// Two embedding clients over the same endpoint with different retry
	// budgets: the query path fails fast, ingestion keeps trying.
	queryEmbedder, err := jina.NewJinaProvider(
		cfg.Embedding.APIKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		retry.QueryPath(),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	ingestEmbedder, err := jina.NewJinaProvider(
		cfg.Embedding.APIKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		retry.IngestPath(),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}

	llmProvider, err := factory.NewProvider(
		cfg.LLM.Provider,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		cfg.LLM.MaxTokens,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.LLM.Provider, cfg.LLM.Model)

	// Repositories: cache decorator over the pgvector-backed store.
	chunkRepo := cache.NewCachedChunkRepository(
		implementation.NewKnowledgeChunkRepository(db, cfg.Embedding.Dimension),
		time.Duration(cfg.Retrieval.CacheTTLSeconds)*time.Second,
	)

	// Services
	generator := response.NewGenerator(llmProvider, sysLogger)
	askService := service.NewAskService(chunkRepo, queryEmbedder, generator, cfg.Retrieval, sysLogger)
	ingestService := service.NewIngestService(pubSub, constant.IngestChunkTopicName, chunkRepo, ingestEmbedder, sysLogger)

	return &Container{
		AskController:    controller.NewAskController(askService),
		IngestController: controller.NewIngestController(ingestService),
		HealthController: controller.NewHealthController(chunkRepo),
		IngestService:    ingestService,
		Logger:           sysLogger,
	}
}
