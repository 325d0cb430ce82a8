package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// MealRepository persists the per-(user,date) meal aggregate.
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// FindByUserAndDate returns the meal aggregate for one day, or (nil, nil)
// when the day has no record yet.
func (r *MealRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.DailyMeal, error) {
	var meal domain.DailyMeal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &meal, nil
}

func (r *MealRepository) Save(ctx context.Context, meal *domain.DailyMeal) error {
	if err := r.db.WithContext(ctx).Save(meal).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *MealRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&domain.DailyMeal{}).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
