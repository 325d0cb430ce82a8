package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// DayLogRepository persists the unifying per-(user,date) log row.
type DayLogRepository struct {
	db *gorm.DB
}

func NewDayLogRepository(db *gorm.DB) *DayLogRepository {
	return &DayLogRepository{db: db}
}

// FindByUserAndDate returns the day log, or (nil, nil) when absent.
func (r *DayLogRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.DailyLog, error) {
	var log domain.DailyLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &log, nil
}

func (r *DayLogRepository) Save(ctx context.Context, log *domain.DailyLog) error {
	if err := r.db.WithContext(ctx).Save(log).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *DayLogRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&domain.DailyLog{}).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
