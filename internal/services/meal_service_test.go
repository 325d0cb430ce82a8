package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/healthchat/backend/internal/domain"
)

func slot(time string, foods ...domain.FoodItem) domain.MealSlot {
	return domain.MealSlot{Time: time, Foods: foods}
}

func food(name string, kcal float64) domain.FoodItem {
	return domain.FoodItem{Name: name, Quantity: 100, Unit: "g", Calories: kcal}
}

func TestMergeMealSlotsAddAppends(t *testing.T) {
	existing := []domain.MealSlot{slot(domain.MealBreakfast, food("toast", 200))}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{
		Action: domain.ActionAdd,
		Meals:  []domain.MealSlot{slot(domain.MealLunch, food("rice", 300))},
	})
	if len(merged) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(merged))
	}
}

func TestMergeMealSlotsUpdateReplacesTargetOnly(t *testing.T) {
	existing := []domain.MealSlot{
		slot(domain.MealBreakfast, food("toast", 200)),
		slot(domain.MealLunch, food("rice", 300)),
	}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{
		Action:     domain.ActionUpdate,
		TargetMeal: domain.MealLunch,
		Meals:      []domain.MealSlot{slot(domain.MealLunch, food("noodles", 450))},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(merged))
	}
	for _, s := range merged {
		if s.Time == domain.MealLunch && s.Foods[0].Name != "noodles" {
			t.Errorf("lunch not replaced: %+v", s)
		}
		if s.Time == domain.MealBreakfast && s.Foods[0].Name != "toast" {
			t.Errorf("breakfast must be untouched: %+v", s)
		}
	}
}

func TestMergeMealSlotsUpdateInfersTargetFromSingleSlot(t *testing.T) {
	existing := []domain.MealSlot{slot(domain.MealDinner, food("soup", 150))}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{
		Action: domain.ActionUpdate,
		Meals:  []domain.MealSlot{slot(domain.MealDinner, food("stew", 400))},
	})
	if len(merged) != 1 || merged[0].Foods[0].Name != "stew" {
		t.Fatalf("inferred target must replace the dinner slot, got %+v", merged)
	}
}

func TestMergeMealSlotsDeleteTarget(t *testing.T) {
	existing := []domain.MealSlot{
		slot(domain.MealBreakfast, food("toast", 200)),
		slot(domain.MealSnack, food("apple", 80)),
	}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{
		Action:     domain.ActionDelete,
		TargetMeal: domain.MealSnack,
	})
	if len(merged) != 1 || merged[0].Time != domain.MealBreakfast {
		t.Fatalf("only the snack must go, got %+v", merged)
	}
}

func TestMergeMealSlotsDeleteWithoutTargetClearsDay(t *testing.T) {
	existing := []domain.MealSlot{
		slot(domain.MealBreakfast, food("toast", 200)),
		slot(domain.MealLunch, food("rice", 300)),
	}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{Action: domain.ActionDelete})
	if len(merged) != 0 {
		t.Fatalf("delete with no target and no payload must clear the day, got %+v", merged)
	}
}

func TestMergeMealSlotsReplaceDiscardsEverything(t *testing.T) {
	existing := []domain.MealSlot{
		slot(domain.MealBreakfast, food("toast", 200)),
		slot(domain.MealLunch, food("rice", 300)),
	}
	merged := MergeMealSlots(existing, &domain.MealAnalysis{
		Action: domain.ActionReplace,
		Meals:  []domain.MealSlot{slot(domain.MealDinner, food("salad", 120))},
	})
	if len(merged) != 1 || merged[0].Time != domain.MealDinner {
		t.Fatalf("replace must discard the old slots, got %+v", merged)
	}
}

func TestSumMealTotalsIgnoresModelClaims(t *testing.T) {
	slots := []domain.MealSlot{
		slot(domain.MealBreakfast,
			domain.FoodItem{Name: "toast", Calories: 200, Protein: 8, Fat: 4, Carbs: 30},
			domain.FoodItem{Name: "egg", Calories: 90, Protein: 7, Fat: 6, Carbs: 1},
		),
		slot(domain.MealLunch,
			domain.FoodItem{Name: "rice", Calories: 300, Protein: 6, Fat: 1, Carbs: 66},
		),
	}
	totals := SumMealTotals(slots)
	if totals.Calories != 590 {
		t.Errorf("calories = %v, want 590", totals.Calories)
	}
	if totals.Protein != 21 {
		t.Errorf("protein = %v, want 21", totals.Protein)
	}
	if totals.Carbs != 97 {
		t.Errorf("carbs = %v, want 97", totals.Carbs)
	}
}

func TestSaveAnalysisPersistsRecomputedTotals(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	// Model claims a bogus total; stored totals must come from the foods.
	analysis := &domain.MealAnalysis{
		Action:        domain.ActionAdd,
		Meals:         []domain.MealSlot{slot(domain.MealLunch, food("rice", 300))},
		TotalCalories: 9999,
	}

	meal, err := stack.mealSvc.SaveAnalysis(ctx, user, analysis)
	if err != nil {
		t.Fatal(err)
	}
	if meal.TotalCalories != 300 {
		t.Fatalf("stored total = %v, want recomputed 300", meal.TotalCalories)
	}

	var slots []domain.MealSlot
	if err := json.Unmarshal([]byte(meal.MealsJSON), &slots); err != nil {
		t.Fatalf("stored slots must round-trip: %v", err)
	}
	if len(slots) != 1 || slots[0].Time != domain.MealLunch {
		t.Fatalf("unexpected stored slots %+v", slots)
	}
}

func TestSaveAnalysisUpdateLunchScenario(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	if _, err := stack.mealSvc.SaveAnalysis(ctx, user, &domain.MealAnalysis{
		Action: domain.ActionAdd,
		Meals: []domain.MealSlot{
			slot(domain.MealBreakfast, food("toast", 200)),
			slot(domain.MealLunch, food("rice", 300)),
		},
	}); err != nil {
		t.Fatal(err)
	}

	meal, err := stack.mealSvc.SaveAnalysis(ctx, user, &domain.MealAnalysis{
		Action:     domain.ActionUpdate,
		TargetMeal: domain.MealLunch,
		Meals:      []domain.MealSlot{slot(domain.MealLunch, food("noodles", 450))},
	})
	if err != nil {
		t.Fatal(err)
	}
	if meal.TotalCalories != 650 {
		t.Fatalf("total after lunch update = %v, want 650", meal.TotalCalories)
	}
}

func TestDeleteTodayClearsDayLogReference(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	meal, err := stack.mealSvc.SaveAnalysis(ctx, user, &domain.MealAnalysis{
		Action: domain.ActionAdd,
		Meals:  []domain.MealSlot{slot(domain.MealLunch, food("rice", 300))},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := stack.dayLogSvc.AttachMeal(ctx, user, meal); err != nil {
		t.Fatal(err)
	}

	if err := stack.mealSvc.DeleteToday(ctx, user); err != nil {
		t.Fatal(err)
	}

	stored, err := stack.mealSvc.GetToday(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != 0 {
		t.Fatal("meal row must be gone")
	}

	log, err := stack.dayLogs.FindByUserAndDate(ctx, user.ID, meal.Date)
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		t.Fatal("day log row must survive a meal delete")
	}
	if log.MealID != nil {
		t.Fatal("day log meal reference must be nulled")
	}
	if log.TotalCalories != 0 {
		t.Fatalf("net calories after delete = %v, want 0", log.TotalCalories)
	}
}
