package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/healthchat/backend/internal/cache"
	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/database"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/rag"
	"github.com/healthchat/backend/internal/repository"
	"github.com/healthchat/backend/internal/server"
	"github.com/healthchat/backend/internal/services"
)

func main() {
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
	logger.Info("starting healthchat backend")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("database connected, migrations applied")

	ctx := context.Background()

	gateway, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		logger.Fatalf("Failed to create Gemini gateway: %v", err)
	}

	embeddingCache := cache.NewEmbeddingCache(ctx, cfg.Redis)

	userRepo := repository.NewUserRepository(db)
	mealRepo := repository.NewMealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	emotionRepo := repository.NewEmotionRepository(db)
	dayLogRepo := repository.NewDayLogRepository(db)
	guidelineRepo := repository.NewGuidelineRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	dayLogSvc := services.NewDayLogService(dayLogRepo, mealRepo, activityRepo, emotionRepo, feedbackRepo)
	mealSvc := services.NewMealService(mealRepo, dayLogSvc)
	exerciseSvc := services.NewExerciseService(activityRepo, dayLogSvc)
	emotionSvc := services.NewEmotionService(emotionRepo, dayLogSvc)
	userSvc := services.NewUserService(userRepo)

	router := services.NewRouterService(gateway, cfg.Gemini.FlashModel)
	mealAI := services.NewMealAnalysisService(gateway)
	exerciseAI := services.NewExerciseAnalysisService(gateway)
	emotionAI := services.NewEmotionAnalysisService(gateway)

	unified := services.NewUnifiedService(
		router, mealAI, exerciseAI, emotionAI,
		mealSvc, exerciseSvc, emotionSvc, dayLogSvc,
	)

	searcher := rag.NewSearcher(gateway, guidelineRepo, embeddingCache)
	coach := services.NewCoachService(gateway, searcher, feedbackRepo, mealSvc, exerciseSvc, emotionSvc, userSvc)

	logger.Info("services initialized")

	srv := server.New(cfg.Server, userSvc, unified, mealSvc, exerciseSvc, emotionSvc, dayLogSvc, coach)
	if err := srv.Run(); err != nil {
		logger.Fatalf("HTTP server stopped: %v", err)
	}
}
