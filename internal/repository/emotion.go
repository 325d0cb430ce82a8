package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// EmotionRepository persists the per-(user,date) emotion aggregate.
type EmotionRepository struct {
	db *gorm.DB
}

func NewEmotionRepository(db *gorm.DB) *EmotionRepository {
	return &EmotionRepository{db: db}
}

// FindByUserAndDate returns the emotion aggregate for one day, or (nil, nil)
// when the day has no record yet.
func (r *EmotionRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.DailyEmotion, error) {
	var emotion domain.DailyEmotion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&emotion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &emotion, nil
}

func (r *EmotionRepository) Save(ctx context.Context, emotion *domain.DailyEmotion) error {
	if err := r.db.WithContext(ctx).Save(emotion).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *EmotionRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&domain.DailyEmotion{}).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
