package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
)

// MealAnalysisService turns the routed meal substring plus today's persisted
// slots into a discriminated MealAnalysis.
type MealAnalysisService struct {
	gateway domain.LLMGateway
	log     *slog.Logger
}

func NewMealAnalysisService(gateway domain.LLMGateway) *MealAnalysisService {
	return &MealAnalysisService{
		gateway: gateway,
		log:     logger.With("component", "meal-analyzer"),
	}
}

// rawMealAnalysis is the open-string shape at the LLM boundary. Action is
// parsed into the closed set before the result leaves this service.
type rawMealAnalysis struct {
	Action        string            `json:"action"`
	TargetMeal    string            `json:"targetMeal"`
	Meals         []domain.MealSlot `json:"meals"`
	TotalCalories float64           `json:"totalCalories"`
	TotalProtein  float64           `json:"totalProtein"`
	TotalFat      float64           `json:"totalFat"`
	TotalCarbs    float64           `json:"totalCarbs"`
}

// Analyze classifies the meal substring. Gateway failures and unparseable
// responses degrade to an error-action fallback, never an error return.
func (s *MealAnalysisService) Analyze(ctx context.Context, text string, today *domain.DailyMeal) *domain.MealAnalysis {
	start := time.Now()

	prompt := buildMealPrompt(text, formatTodayMeals(today))

	response := s.gateway.GenerateSmart(ctx, prompt)
	if strings.TrimSpace(response) == "" {
		return mealFallback()
	}

	payload := ExtractJSON(response)
	if payload == "" {
		return mealFallback()
	}

	var raw rawMealAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		s.log.Warn("meal JSON parse failed", "error", err)
		return mealFallback()
	}

	action, ok := domain.ParseAction(raw.Action)
	if !ok {
		s.log.Warn("meal analyzer returned unknown action", "action", raw.Action)
		return mealFallback()
	}

	result := &domain.MealAnalysis{
		Action:        action,
		TargetMeal:    strings.ToLower(strings.TrimSpace(raw.TargetMeal)),
		Meals:         raw.Meals,
		TotalCalories: raw.TotalCalories,
		TotalProtein:  raw.TotalProtein,
		TotalFat:      raw.TotalFat,
		TotalCarbs:    raw.TotalCarbs,
	}
	if result.Meals == nil {
		result.Meals = []domain.MealSlot{}
	}

	// The model tends to over-classify a single-slot edit as a whole-day
	// reset; demote based on the original wording, not the model's claim.
	demoteSingleMealReplace(result, text)

	if result.Action == domain.ActionUpdate && result.TargetMeal == "" && len(result.Meals) == 1 {
		result.TargetMeal = result.Meals[0].Time
	}

	s.log.Info("meal analysis complete",
		"action", result.Action,
		"target", result.TargetMeal,
		"slots", len(result.Meals),
		"took", time.Since(start))

	return result
}

var mealTimeWords = []string{
	domain.MealBreakfast,
	domain.MealLunch,
	domain.MealDinner,
	domain.MealSnack,
}

var wholeDayResetWords = []string{
	"whole day", "entire day", "everything", "all my meals",
	"start over", "from scratch", "reset", "redo",
}

// demoteSingleMealReplace downgrades a model-reported replace to update when
// the text names exactly one time-of-day and carries no whole-day reset
// wording. Isolated so the correction can be tuned or removed on its own.
func demoteSingleMealReplace(result *domain.MealAnalysis, text string) {
	if result.Action != domain.ActionReplace {
		return
	}

	lower := strings.ToLower(text)

	named := 0
	for _, word := range mealTimeWords {
		if strings.Contains(lower, word) {
			named++
		}
	}
	if named != 1 {
		return
	}

	for _, word := range wholeDayResetWords {
		if strings.Contains(lower, word) {
			return
		}
	}

	result.Action = domain.ActionUpdate
}

func formatTodayMeals(today *domain.DailyMeal) string {
	if today == nil || strings.TrimSpace(today.MealsJSON) == "" {
		return "(no meals recorded today yet)\n"
	}

	var slots []domain.MealSlot
	if err := json.Unmarshal([]byte(today.MealsJSON), &slots); err != nil || len(slots) == 0 {
		return "(no meals recorded today yet)\n"
	}

	var sb strings.Builder
	sb.WriteString("[meals recorded today]\n")
	for _, slot := range slots {
		foods := make([]string, 0, len(slot.Foods))
		for _, f := range slot.Foods {
			foods = append(foods, fmt.Sprintf("%s (%.0f kcal)", f.Name, f.Calories))
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", slot.Time, strings.Join(foods, ", ")))
	}
	return sb.String()
}

func buildMealPrompt(text, todaySection string) string {
	return fmt.Sprintf(`You are an AI that analyzes a user's meal diary entry.

Hard rules:
- output JSON only, no code fences, no explanations
- quantity unit is always g
- calories and macros for new foods must be freshly estimated
- never copy calorie values from the existing record

--------------------------------------------
[meals recorded today]
%s
--------------------------------------------
[action rules]
add: "and", "also", "additionally", "more"
update: "change", "swap", "instead", "rather than", "correct"
delete: "remove", "delete", "take out", "erase"
replace: "start over", "from scratch", "whole day", "redo everything"

--------------------------------------------
[targetMeal rules]
- exactly one time-of-day mentioned -> that time
- several times mentioned -> null
- no time mentioned -> null
- update with a single meals entry -> infer targetMeal from its time

--------------------------------------------
[required JSON schema]
{
  "action": "add" | "update" | "delete" | "replace",
  "targetMeal": "breakfast" | "lunch" | "dinner" | "snack" | null,
  "meals": [
    {
      "time": "breakfast" | "lunch" | "dinner" | "snack",
      "foods": [
        {
          "name": "food name",
          "quantity": (number, grams),
          "unit": "g",
          "calories": (number, kcal),
          "protein": (number, g),
          "fat": (number, g),
          "carbs": (number, g)
        }
      ]
    }
  ],
  "totalCalories": (number),
  "totalProtein": (number),
  "totalFat": (number),
  "totalCarbs": (number)
}

The "time" field must be exactly one of: "breakfast", "lunch", "dinner", "snack".

--------------------------------------------
Input sentence:
%s`, todaySection, text)
}

func mealFallback() *domain.MealAnalysis {
	return &domain.MealAnalysis{
		Action:  domain.ActionError,
		Meals:   []domain.MealSlot{},
		Message: "AI analysis failed, please try again.",
	}
}
