package domain

import (
	"context"
	"time"
)

// LLMGateway wraps the text-generation and embedding endpoints. All methods
// degrade to empty results after retries are exhausted; callers must treat
// blank output as "unavailable", never as valid empty content.
type LLMGateway interface {
	Generate(ctx context.Context, model, prompt string) string
	GenerateSmart(ctx context.Context, prompt string) string
	Embed(ctx context.Context, text string) []float32
}

// UserRepository is the narrow profile-lookup contract this core consumes.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
}

// MealRepository persists the per-(user,date) meal aggregate. Find returns
// (nil, nil) when no row exists.
type MealRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*DailyMeal, error)
	Save(ctx context.Context, meal *DailyMeal) error
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error
}

// ActivityRepository persists the per-(user,date) exercise aggregate with its
// items preloaded. Find returns (nil, nil) when no row exists.
type ActivityRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*DailyActivity, error)
	Save(ctx context.Context, activity *DailyActivity) error
	Delete(ctx context.Context, activity *DailyActivity) error
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error
	ReplaceItems(ctx context.Context, activity *DailyActivity, items []ExerciseItem) error
}

// EmotionRepository persists the per-(user,date) emotion aggregate. Find
// returns (nil, nil) when no row exists.
type EmotionRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*DailyEmotion, error)
	Save(ctx context.Context, emotion *DailyEmotion) error
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error
}

// DayLogRepository persists the unifying per-(user,date) log row.
type DayLogRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*DailyLog, error)
	Save(ctx context.Context, log *DailyLog) error
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error
}

// GuidelineRepository stores immutable guideline chunks.
type GuidelineRepository interface {
	ExistsBySource(ctx context.Context, source string) (bool, error)
	Save(ctx context.Context, chunk *GuidelineChunk) error
	FindAll(ctx context.Context) ([]GuidelineChunk, error)
}

// FeedbackRepository stores generated coach feedback per (user,date).
type FeedbackRepository interface {
	FindByUserAndDate(ctx context.Context, userID uint, date time.Time) (*CoachFeedback, error)
	Save(ctx context.Context, feedback *CoachFeedback) error
	DeleteByUserAndDate(ctx context.Context, userID uint, date time.Time) error
}
