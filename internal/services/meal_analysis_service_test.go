package services

import (
	"context"
	"testing"

	"github.com/healthchat/backend/internal/domain"
)

func mealResponse(action, target string) string {
	return `{"action":"` + action + `","targetMeal":"` + target + `","meals":[{"time":"lunch","foods":[{"name":"rice","quantity":200,"unit":"g","calories":300,"protein":6,"fat":1,"carbs":66}]}],"totalCalories":300}`
}

func TestMealAnalyzeDemotesSingleMealReplace(t *testing.T) {
	gateway := &fakeGateway{respond: func(string) string { return mealResponse("replace", "lunch") }}
	svc := NewMealAnalysisService(gateway)

	result := svc.Analyze(context.Background(), "change my lunch to rice", nil)

	if result.Action != domain.ActionUpdate {
		t.Fatalf("single named meal with no reset wording must demote to update, got %s", result.Action)
	}
}

func TestMealAnalyzeKeepsReplaceOnWholeDayWording(t *testing.T) {
	gateway := &fakeGateway{respond: func(string) string { return mealResponse("replace", "") }}
	svc := NewMealAnalysisService(gateway)

	result := svc.Analyze(context.Background(), "scrap my lunch, redo the whole day with just rice", nil)

	if result.Action != domain.ActionReplace {
		t.Fatalf("whole-day wording must keep replace, got %s", result.Action)
	}
}

func TestMealAnalyzeKeepsReplaceWhenTwoMealsNamed(t *testing.T) {
	gateway := &fakeGateway{respond: func(string) string { return mealResponse("replace", "") }}
	svc := NewMealAnalysisService(gateway)

	result := svc.Analyze(context.Background(), "breakfast and lunch were both just rice", nil)

	if result.Action != domain.ActionReplace {
		t.Fatalf("two named meals must not demote, got %s", result.Action)
	}
}

func TestMealAnalyzeInfersTargetFromSingleSlot(t *testing.T) {
	gateway := &fakeGateway{respond: func(string) string { return mealResponse("update", "") }}
	svc := NewMealAnalysisService(gateway)

	result := svc.Analyze(context.Background(), "make that rice instead", nil)

	if result.TargetMeal != domain.MealLunch {
		t.Fatalf("update with one slot must infer its time, got %q", result.TargetMeal)
	}
}

func TestMealAnalyzeFallsBackOnBlank(t *testing.T) {
	svc := NewMealAnalysisService(&fakeGateway{})

	result := svc.Analyze(context.Background(), "rice for lunch", nil)

	if result.Action != domain.ActionError {
		t.Fatalf("blank gateway response must fall back to error action, got %s", result.Action)
	}
	if result.Message == "" {
		t.Error("fallback must carry a user-facing message")
	}
	if result.Meals == nil {
		t.Error("fallback meals must be an empty slice, not nil")
	}
}

func TestMealAnalyzeFallsBackOnUnknownAction(t *testing.T) {
	gateway := &fakeGateway{respond: func(string) string { return mealResponse("merge", "") }}
	svc := NewMealAnalysisService(gateway)

	result := svc.Analyze(context.Background(), "rice for lunch", nil)
	if result.Action != domain.ActionError {
		t.Fatalf("unknown action must fall back, got %s", result.Action)
	}
}
