package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/utils"
)

// MealService applies a MealAnalysis to the persisted day aggregate. The
// merge itself is pure; only the surrounding fetch/save touches storage.
type MealService struct {
	meals   domain.MealRepository
	dayLogs *DayLogService
	log     *slog.Logger
}

func NewMealService(meals domain.MealRepository, dayLogs *DayLogService) *MealService {
	return &MealService{
		meals:   meals,
		dayLogs: dayLogs,
		log:     logger.With("component", "meal-service"),
	}
}

// GetToday returns today's aggregate, or an empty one when nothing is
// recorded yet so callers never deal with nil.
func (s *MealService) GetToday(ctx context.Context, user *domain.User) (*domain.DailyMeal, error) {
	return s.GetByDate(ctx, user, utils.Today())
}

func (s *MealService) GetByDate(ctx context.Context, user *domain.User, date time.Time) (*domain.DailyMeal, error) {
	meal, err := s.meals.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return &domain.DailyMeal{UserID: user.ID, Date: date, MealsJSON: "[]"}, nil
	}
	if meal.MealsJSON == "" {
		meal.MealsJSON = "[]"
	}
	return meal, nil
}

// DeleteToday removes today's meal row and clears the DayLog reference first.
func (s *MealService) DeleteToday(ctx context.Context, user *domain.User) error {
	today := utils.Today()
	if err := s.dayLogs.ClearMeal(ctx, user, today); err != nil {
		return err
	}
	if err := s.meals.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	s.log.Info("meal record deleted", "user", user.ID, "date", today.Format("2006-01-02"))
	return nil
}

// SaveAnalysis merges the analysis into today's slots, recomputes the totals
// from the resulting foods, and persists the aggregate.
func (s *MealService) SaveAnalysis(ctx context.Context, user *domain.User, analysis *domain.MealAnalysis) (*domain.DailyMeal, error) {
	today := utils.Today()

	meal, err := s.meals.FindByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		meal = &domain.DailyMeal{UserID: user.ID, Date: today}
	}

	var slots []domain.MealSlot
	if meal.MealsJSON != "" {
		if err := json.Unmarshal([]byte(meal.MealsJSON), &slots); err != nil {
			s.log.Warn("stored meal JSON unreadable, starting clean", "error", err)
			slots = nil
		}
	}

	slots = MergeMealSlots(slots, analysis)

	encoded, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	meal.MealsJSON = string(encoded)

	totals := SumMealTotals(slots)
	meal.TotalCalories = totals.Calories
	meal.TotalProtein = totals.Protein
	meal.TotalFat = totals.Fat
	meal.TotalCarbs = totals.Carbs

	if err := s.meals.Save(ctx, meal); err != nil {
		return nil, err
	}

	s.log.Info("meal reconciled",
		"user", user.ID,
		"action", analysis.Action,
		"slots", len(slots),
		"kcal", totals.Calories)

	return meal, nil
}

// SaveManual overwrites the day's slots with a user-edited set; totals are
// still recomputed server-side.
func (s *MealService) SaveManual(ctx context.Context, user *domain.User, date time.Time, slots []domain.MealSlot) (*domain.DailyMeal, error) {
	meal, err := s.meals.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		meal = &domain.DailyMeal{UserID: user.ID, Date: date}
	}

	encoded, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	meal.MealsJSON = string(encoded)

	totals := SumMealTotals(slots)
	meal.TotalCalories = totals.Calories
	meal.TotalProtein = totals.Protein
	meal.TotalFat = totals.Fat
	meal.TotalCarbs = totals.Carbs

	if err := s.meals.Save(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// MealTotals is the recomputed sum over every food in every slot.
type MealTotals struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// SumMealTotals recomputes the aggregate totals by summation. The model's own
// total claims are never trusted.
func SumMealTotals(slots []domain.MealSlot) MealTotals {
	var t MealTotals
	for _, slot := range slots {
		for _, f := range slot.Foods {
			t.Calories += f.Calories
			t.Protein += f.Protein
			t.Fat += f.Fat
			t.Carbs += f.Carbs
		}
	}
	return t
}

// MergeMealSlots applies the discriminated action to the existing slots and
// returns the result. Pure: no I/O, no mutation of the inputs' slices beyond
// filtering.
func MergeMealSlots(existing []domain.MealSlot, analysis *domain.MealAnalysis) []domain.MealSlot {
	slots := make([]domain.MealSlot, len(existing))
	copy(slots, existing)

	target := analysis.TargetMeal
	incoming := analysis.Meals

	// A single-slot update with no target applies to that slot's time.
	if analysis.Action == domain.ActionUpdate && target == "" && len(incoming) == 1 {
		target = incoming[0].Time
	}

	switch analysis.Action {

	case domain.ActionReplace:
		slots = slots[:0]
		slots = append(slots, incoming...)

	case domain.ActionUpdate:
		if len(incoming) == 0 {
			break
		}
		if target != "" {
			slots = removeSlotTimes(slots, map[string]bool{target: true})
		} else {
			slots = removeSlotTimes(slots, slotTimes(incoming))
		}
		slots = append(slots, incoming...)

	case domain.ActionDelete:
		switch {
		case target != "":
			slots = removeSlotTimes(slots, map[string]bool{target: true})
		case len(incoming) > 0:
			slots = removeSlotTimes(slots, slotTimes(incoming))
		default:
			// No target and no payload: clear the whole day.
			slots = slots[:0]
		}

	case domain.ActionAdd:
		slots = append(slots, incoming...)
	}

	return slots
}

func slotTimes(slots []domain.MealSlot) map[string]bool {
	times := make(map[string]bool, len(slots))
	for _, s := range slots {
		times[s.Time] = true
	}
	return times
}

func removeSlotTimes(slots []domain.MealSlot, times map[string]bool) []domain.MealSlot {
	kept := slots[:0]
	for _, s := range slots {
		if !times[s.Time] {
			kept = append(kept, s)
		}
	}
	return kept
}
