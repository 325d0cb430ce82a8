package repository

import (
	"context"

	apperrors "github.com/healthchat/backend/internal/errors"

	"github.com/healthchat/backend/internal/domain"
	"gorm.io/gorm"
)

// GuidelineRepository stores immutable guideline chunks.
type GuidelineRepository struct {
	db *gorm.DB
}

func NewGuidelineRepository(db *gorm.DB) *GuidelineRepository {
	return &GuidelineRepository{db: db}
}

// ExistsBySource reports whether a source has already been imported.
func (r *GuidelineRepository) ExistsBySource(ctx context.Context, source string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.GuidelineChunk{}).
		Where("source = ?", source).
		Count(&count).Error
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	return count > 0, nil
}

func (r *GuidelineRepository) Save(ctx context.Context, chunk *domain.GuidelineChunk) error {
	if err := r.db.WithContext(ctx).Create(chunk).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// FindAll loads every stored chunk. The guideline corpus is small enough for
// a full scan at search time.
func (r *GuidelineRepository) FindAll(ctx context.Context) ([]domain.GuidelineChunk, error) {
	var chunks []domain.GuidelineChunk
	if err := r.db.WithContext(ctx).Find(&chunks).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return chunks, nil
}
