package domain

import (
	"time"
)

// User represents an account with the profile fields the analyzers need.
type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string `gorm:"uniqueIndex;not null"`
	Nickname  string
	Provider  string
	Gender    string
	BirthDate *time.Time
	Height    float64 // cm
	Weight    float64 // kg
	GoalText  string  `gorm:"type:text"`
}

// Age returns the user's age in full years, 0 when the birth date is unknown.
func (u *User) Age(now time.Time) int {
	if u.BirthDate == nil {
		return 0
	}
	years := now.Year() - u.BirthDate.Year()
	if u.BirthDate.AddDate(years, 0, 0).After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Time-of-day values used for meal slots.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// FoodItem is a single food within a meal slot.
type FoodItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// MealSlot groups the foods eaten at one time of day.
type MealSlot struct {
	Time  string     `json:"time"`
	Foods []FoodItem `json:"foods"`
}

// DailyMeal is the per-(user,date) meal aggregate. Slots live in a JSON text
// column; totals are always recomputed from the foods, never taken from the
// model's own claim.
type DailyMeal struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index:idx_meal_user_date,unique"`
	Date          time.Time `gorm:"index:idx_meal_user_date,unique"`
	MealsJSON     string    `gorm:"type:text"`
	TotalCalories float64
	TotalProtein  float64
	TotalFat      float64
	TotalCarbs    float64
}

// ExerciseItem is one exercise row under a DailyActivity.
type ExerciseItem struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ActivityID  uint      `gorm:"index" json:"-"`
	Category    string    `json:"category"`
	Part        string    `json:"part"`
	Name        string    `json:"name"`
	DurationMin int       `json:"durationMin"`
	Intensity   string    `json:"intensity"`
	Calories    int       `json:"calories"`
	CreatedAt   time.Time `json:"-"`
}

// DailyActivity is the per-(user,date) exercise aggregate.
type DailyActivity struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	UserID        uint           `gorm:"index:idx_activity_user_date,unique" json:"-"`
	Date          time.Time      `gorm:"index:idx_activity_user_date,unique" json:"date"`
	TotalCalories float64        `json:"totalCalories"`
	TotalDuration float64        `json:"totalDuration"`
	Exercises     []ExerciseItem `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"exercises"`
}

// DailyEmotion is the per-(user,date) emotion aggregate. The four JSON columns
// hold parallel sequences and must always decode to equal lengths.
type DailyEmotion struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint      `gorm:"index:idx_emotion_user_date,unique"`
	Date           time.Time `gorm:"index:idx_emotion_user_date,unique"`
	PrimaryEmotion string
	PrimaryScore   int
	EmotionsJSON   string `gorm:"type:text"`
	ScoresJSON     string `gorm:"type:text"`
	SummariesJSON  string `gorm:"type:text"`
	KeywordsJSON   string `gorm:"type:text"`
	RawText        string `gorm:"type:text"`
	CreatedAt      time.Time
}

// DailyLog ties the three aggregates together for one (user,date) and caches
// the cross-domain summary.
type DailyLog struct {
	ID                uint `gorm:"primaryKey"`
	UserID            uint      `gorm:"index:idx_log_user_date,unique"`
	Date              time.Time `gorm:"index:idx_log_user_date,unique"`
	MealID            *uint
	ActivityID        *uint
	EmotionID         *uint
	TotalCalories     float64 // meal intake minus exercise burn
	TotalExerciseTime float64
	MoodSummary       string
}

// GuidelineChunk is an embedded span of guideline document text. Rows are
// written once at import time and never mutated.
type GuidelineChunk struct {
	ID         uint   `gorm:"primaryKey"`
	Source     string `gorm:"index;not null"`
	ChunkIndex int
	Text       string `gorm:"type:text;not null"`
	Embedding  []byte `gorm:"not null"`
}

// CoachFeedback stores the generated daily coaching feedback per (user,date).
type CoachFeedback struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint      `gorm:"index:idx_feedback_user_date,unique"`
	Date      time.Time `gorm:"index:idx_feedback_user_date,unique"`
	Feedback  string    `gorm:"type:text"`
	CreatedAt time.Time
}
