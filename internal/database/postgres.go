package database

import (
	"fmt"

	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresDB opens the connection and migrates the schema.
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.DailyMeal{},
		&domain.DailyActivity{},
		&domain.ExerciseItem{},
		&domain.DailyEmotion{},
		&domain.DailyLog{},
		&domain.GuidelineChunk{},
		&domain.CoachFeedback{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
