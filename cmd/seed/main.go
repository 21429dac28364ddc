package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/implementation"
	"portfolio-assistant-be/pkg/database"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/embedding/jina"
	"portfolio-assistant-be/pkg/retry"
	"portfolio-assistant-be/pkg/textsplit"
)

// seedItem mirrors one entry of the seed file: a human-readable prose fact
// about the site owner plus its provenance.
type seedItem struct {
	SourceType string `json:"source_type"`
	SourceId   string `json:"source_id"`
	Content    string `json:"content"`
}

func main() {
	filePath := flag.String("file", "seed/content.json", "path to the seed content JSON file")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if cfg.Embedding.APIKey == "" {
		log.Fatal("Error: JINA_API_KEY is not set")
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to read seed file: %v", err)
	}

	var items []seedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Fatalf("Error: Failed to parse seed file: %v", err)
	}
	if len(items) == 0 {
		log.Fatal("Error: Seed file contains no items")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	embedder, err := jina.NewJinaProvider(
		cfg.Embedding.APIKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		retry.IngestPath(), // offline loading prefers completion over latency
	)
	if err != nil {
		log.Fatalf("Error: Failed to initialize embedding provider: %v", err)
	}

	repo := implementation.NewKnowledgeChunkRepository(db, cfg.Embedding.Dimension)
	ctx := context.Background()

	for i, item := range items {
		if item.SourceType == "" || item.SourceId == "" || item.Content == "" {
			log.Fatalf("Error: Item %d is missing source_type, source_id or content", i)
		}

		parts := textsplit.Split(item.Content, constant.DefaultIngestChunkRunes, constant.DefaultIngestChunkOverlap)
		chunks := make([]*entity.KnowledgeChunk, 0, len(parts))
		for _, part := range parts {
			vector, err := embedder.Generate(ctx, part, embedding.TaskPassage)
			if err != nil {
				log.Fatalf("Error: Failed to embed %q: %v", item.SourceId, err)
			}
			chunks = append(chunks, &entity.KnowledgeChunk{
				SourceType: item.SourceType,
				SourceId:   item.SourceId,
				Content:    part,
				Embedding:  vector,
			})
		}

		if err := repo.DeleteBySourceId(ctx, item.SourceId); err != nil {
			log.Fatalf("Error: Failed to clear previous chunks for %q: %v", item.SourceId, err)
		}
		if err := repo.CreateBulk(ctx, chunks); err != nil {
			log.Fatalf("Error: Failed to store chunks for %q: %v", item.SourceId, err)
		}

		log.Printf("Seeded [%s:%s] as %d chunk(s) (%d/%d)", item.SourceType, item.SourceId, len(chunks), i+1, len(items))
	}

	log.Printf("Done: seeded %d sources.", len(items))
}
