package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/utils"
)

// ExerciseService applies an ExerciseAnalysis to the persisted day aggregate.
// Identity is the normalized exercise name; merge helpers are pure.
type ExerciseService struct {
	activities domain.ActivityRepository
	dayLogs    *DayLogService
	log        *slog.Logger
}

func NewExerciseService(activities domain.ActivityRepository, dayLogs *DayLogService) *ExerciseService {
	return &ExerciseService{
		activities: activities,
		dayLogs:    dayLogs,
		log:        logger.With("component", "exercise-service"),
	}
}

func (s *ExerciseService) GetToday(ctx context.Context, user *domain.User) (*domain.DailyActivity, error) {
	return s.GetByDate(ctx, user, utils.Today())
}

func (s *ExerciseService) GetByDate(ctx context.Context, user *domain.User, date time.Time) (*domain.DailyActivity, error) {
	activity, err := s.activities.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return &domain.DailyActivity{UserID: user.ID, Date: date, Exercises: []domain.ExerciseItem{}}, nil
	}
	return activity, nil
}

// TodayItems returns today's exercise rows, empty when none exist. The
// analyzer feeds this into its prompt.
func (s *ExerciseService) TodayItems(ctx context.Context, user *domain.User) ([]domain.ExerciseItem, error) {
	activity, err := s.activities.FindByUserAndDate(ctx, user.ID, utils.Today())
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return []domain.ExerciseItem{}, nil
	}
	return activity.Exercises, nil
}

// DeleteToday removes today's activity row, clearing the DayLog reference
// first so no dangling foreign key survives.
func (s *ExerciseService) DeleteToday(ctx context.Context, user *domain.User) error {
	today := utils.Today()
	if err := s.dayLogs.ClearActivity(ctx, user, today); err != nil {
		return err
	}
	if err := s.activities.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	s.log.Info("exercise record deleted", "user", user.ID, "date", today.Format("2006-01-02"))
	return nil
}

// SaveAnalysis merges the analysis into today's items and persists the
// result. A delete that empties the whole day removes the row and returns
// nil; every other path returns the saved aggregate.
func (s *ExerciseService) SaveAnalysis(ctx context.Context, user *domain.User, analysis *domain.ExerciseAnalysis) (*domain.DailyActivity, error) {
	today := utils.Today()

	activity, err := s.activities.FindByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		activity = &domain.DailyActivity{UserID: user.ID, Date: today}
	}

	items := activity.Exercises

	switch analysis.Action {
	case domain.ActionAdd:
		items = MergeExerciseAdd(items, analysis.Exercises)
	case domain.ActionUpdate:
		items = ApplyExerciseUpdate(items, analysis.Exercises)
	case domain.ActionReplace:
		items = RemoveExercises(items, analysis.DeleteTargets)
		items = MergeExerciseAdd(items, analysis.Exercises)
	case domain.ActionDelete:
		// Full clear only when no targets and no payload are named.
		if len(analysis.DeleteTargets) == 0 && len(analysis.Exercises) == 0 {
			if err := s.DeleteToday(ctx, user); err != nil {
				return nil, err
			}
			s.log.Info("all exercises cleared", "user", user.ID)
			return nil, nil
		}
		items = RemoveExercises(items, analysis.DeleteTargets)
	}

	activity.Exercises = items
	updateActivityTotals(activity)

	if activity.ID != 0 {
		if err := s.activities.ReplaceItems(ctx, activity, items); err != nil {
			return nil, err
		}
	} else if err := s.activities.Save(ctx, activity); err != nil {
		return nil, err
	}

	s.log.Info("exercise reconciled",
		"user", user.ID,
		"action", analysis.Action,
		"items", len(items),
		"kcal", activity.TotalCalories)

	return activity, nil
}

// SaveManual overwrites the day's items with a user-edited set.
func (s *ExerciseService) SaveManual(ctx context.Context, user *domain.User, date time.Time, items []domain.ExerciseItem) (*domain.DailyActivity, error) {
	activity, err := s.activities.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		activity = &domain.DailyActivity{UserID: user.ID, Date: date}
	}

	activity.Exercises = items
	updateActivityTotals(activity)

	if activity.ID != 0 {
		return activity, s.activities.ReplaceItems(ctx, activity, items)
	}
	return activity, s.activities.Save(ctx, activity)
}

func updateActivityTotals(activity *domain.DailyActivity) {
	var duration, calories float64
	for _, item := range activity.Exercises {
		duration += float64(item.DurationMin)
		calories += float64(item.Calories)
	}
	activity.TotalDuration = duration
	activity.TotalCalories = calories
}

// NormalizeExerciseName canonicalizes a name for identity comparison:
// trimmed, Unicode-composed, lowercased.
func NormalizeExerciseName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// MergeExerciseAdd folds the incoming items into the existing ones. A name
// match accumulates duration and calories; a new name appends. Incoming
// items carry deltas, never totals.
func MergeExerciseAdd(existing, incoming []domain.ExerciseItem) []domain.ExerciseItem {
	items := make([]domain.ExerciseItem, len(existing))
	copy(items, existing)

	for _, in := range incoming {
		key := NormalizeExerciseName(in.Name)
		merged := false
		for i := range items {
			if NormalizeExerciseName(items[i].Name) == key {
				items[i].DurationMin += in.DurationMin
				items[i].Calories += in.Calories
				if in.Intensity != "" {
					items[i].Intensity = in.Intensity
				}
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, in)
		}
	}
	return items
}

// ApplyExerciseUpdate overwrites duration and calories of existing items
// matched by name, including explicit zeroes. Unmatched incoming items are
// dropped: an update never creates rows.
func ApplyExerciseUpdate(existing, incoming []domain.ExerciseItem) []domain.ExerciseItem {
	items := make([]domain.ExerciseItem, len(existing))
	copy(items, existing)

	for _, in := range incoming {
		key := NormalizeExerciseName(in.Name)
		for i := range items {
			if NormalizeExerciseName(items[i].Name) != key {
				continue
			}
			items[i].DurationMin = in.DurationMin
			items[i].Calories = in.Calories
			if in.Intensity != "" {
				items[i].Intensity = in.Intensity
			}
			if in.Category != "" {
				items[i].Category = in.Category
			}
			if in.Part != "" {
				items[i].Part = in.Part
			}
			break
		}
	}
	return items
}

// RemoveExercises drops every item whose normalized name matches a target.
func RemoveExercises(items []domain.ExerciseItem, targets []string) []domain.ExerciseItem {
	if len(targets) == 0 {
		return items
	}
	doomed := make(map[string]bool, len(targets))
	for _, t := range targets {
		doomed[NormalizeExerciseName(t)] = true
	}
	kept := make([]domain.ExerciseItem, 0, len(items))
	for _, item := range items {
		if !doomed[NormalizeExerciseName(item.Name)] {
			kept = append(kept, item)
		}
	}
	return kept
}
