package main

import (
	"log"
	"os"

	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Failed to execute setup SQL: %v", err)
		}
	}

	log.Println("Step 2: Running AutoMigrate for knowledge_chunks...")
	if err := db.AutoMigrate(&model.KnowledgeChunk{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating similarity search function and index...")
	postMigrationSQL := []string{
		// Server-side similarity search: pre-ranked rows above a threshold.
		// Equivalent to ranking in process, pushed down to pgvector.
		`CREATE OR REPLACE FUNCTION match_knowledge_chunks(
			query_embedding vector(1024),
			match_threshold float,
			match_count int
		) RETURNS TABLE (
			id uuid,
			source_type varchar,
			source_id varchar,
			content text,
			similarity float
		) LANGUAGE sql STABLE AS $$
			SELECT
				knowledge_chunks.id,
				knowledge_chunks.source_type,
				knowledge_chunks.source_id,
				knowledge_chunks.content,
				1 - (knowledge_chunks.embedding <=> query_embedding) AS similarity
			FROM knowledge_chunks
			WHERE 1 - (knowledge_chunks.embedding <=> query_embedding) >= match_threshold
			ORDER BY similarity DESC
			LIMIT match_count;
		$$;`,

		// Cosine-distance index. Overkill at portfolio scale but free to have.
		`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_embedding
			ON knowledge_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 10);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Fatalf("Error: Post-migration SQL failed: %v", err)
		}
	}

	log.Println("Migration complete.")
}
