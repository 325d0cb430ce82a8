package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// FeedbackRepository stores generated coach feedback per (user,date).
type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.CoachFeedback, error) {
	var feedback domain.CoachFeedback
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &feedback, nil
}

func (r *FeedbackRepository) Save(ctx context.Context, feedback *domain.CoachFeedback) error {
	if err := r.db.WithContext(ctx).Save(feedback).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *FeedbackRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&domain.CoachFeedback{}).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
