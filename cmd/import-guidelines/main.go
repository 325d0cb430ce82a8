package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/database"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/rag"
	"github.com/healthchat/backend/internal/repository"
	"github.com/healthchat/backend/internal/services"
)

// Guideline documents shipped with the repo, as plain text extracted from the
// published sources. File name maps to the stored source name.
var sources = map[string]string{
	rag.SourceKDR:              "kdr-2020.txt",
	rag.SourceKoreanGuidelines: "korean-guidelines.txt",
	rag.SourceWHOObesity:       "who-obesity.txt",
	rag.SourceWHOActivity:      "who-activity.txt",
	rag.SourceWHOStress:        "who-stress.txt",
}

func main() {
	dir := flag.String("dir", "guidelines", "directory holding the guideline text files")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	gateway, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		logger.Fatalf("Failed to create Gemini gateway: %v", err)
	}

	importer := rag.NewImporter(gateway, repository.NewGuidelineRepository(db))

	total := 0
	for source, file := range sources {
		n, err := importer.ImportFile(ctx, source, filepath.Join(*dir, file))
		if err != nil {
			logger.Fatalf("Import of %s failed: %v", source, err)
		}
		total += n
	}

	logger.Info("guideline import finished", "chunks", total)
}
