package main

import (
	"context"
	"log"

	"portfolio-assistant-be/internal/bootstrap"
	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/server"
	"portfolio-assistant-be/internal/tracer"
	"portfolio-assistant-be/pkg/database"
)

func main() {
	// 1. Load and validate configuration. Missing credentials kill the
	// process here, never at the first request.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 3. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync() //nolint:errcheck

	// 5. Start the ingestion consumer
	if err := container.IngestService.Consume(context.Background()); err != nil {
		log.Fatalf("Failed to start ingest consumer: %v", err)
	}

	// 6. Run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
