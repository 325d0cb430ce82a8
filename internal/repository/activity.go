package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository persists the per-(user,date) exercise aggregate.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// FindByUserAndDate returns the activity with its exercise items preloaded,
// or (nil, nil) when the day has no record yet.
func (r *ActivityRepository) FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.DailyActivity, error) {
	var activity domain.DailyActivity
	err := r.db.WithContext(ctx).
		Preload("Exercises").
		Where("user_id = ? AND date = ?", userID, date).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return &activity, nil
}

func (r *ActivityRepository) Save(ctx context.Context, activity *domain.DailyActivity) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(activity).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// ReplaceItems swaps the activity's exercise rows for the given set in one
// transaction, used after in-memory reconciliation removed items.
func (r *ActivityRepository) ReplaceItems(ctx context.Context, activity *domain.DailyActivity, items []domain.ExerciseItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if activity.ID != 0 {
			if err := tx.Where("activity_id = ?", activity.ID).Delete(&domain.ExerciseItem{}).Error; err != nil {
				return err
			}
		}
		activity.Exercises = items
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(activity).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, activity *domain.DailyActivity) error {
	if activity == nil || activity.ID == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&domain.ExerciseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(activity).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ActivityRepository) DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error {
	activity, err := r.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if activity == nil {
		return nil
	}
	return r.Delete(ctx, activity)
}
