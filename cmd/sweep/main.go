package main

import (
	"context"

	"github.com/joho/godotenv"

	"staffdocs/internal/config"
	"staffdocs/internal/database"
	"staffdocs/internal/domain/document"
	"staffdocs/internal/logger"
)

// Reconciles the blob store against the catalog: removes stored files no
// record references, once they are older than SWEEP_GRACE_PERIOD. Run it
// from cron; the API never reclaims orphans on its own.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db connect failed: %v", err)
	}

	blobs, err := document.NewBlobStore(cfg.StorageRoot)
	if err != nil {
		logger.Fatalf("blob store: %v", err)
	}

	sweeper := document.NewSweeper(document.NewRepository(db), blobs, cfg.SweepGrace)
	removed, err := sweeper.Sweep(context.Background())
	if err != nil {
		logger.Fatalf("sweep failed: %v", err)
	}
	logger.Infof("sweep completed: %d orphaned blobs removed", removed)
}
