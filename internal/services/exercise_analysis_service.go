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

// ExerciseAnalysisService turns the routed exercise substring, today's
// persisted items and the user's profile into a discriminated
// ExerciseAnalysis. The profile grounds the calorie estimates.
type ExerciseAnalysisService struct {
	gateway domain.LLMGateway
	log     *slog.Logger
}

func NewExerciseAnalysisService(gateway domain.LLMGateway) *ExerciseAnalysisService {
	return &ExerciseAnalysisService{
		gateway: gateway,
		log:     logger.With("component", "exercise-analyzer"),
	}
}

type rawExerciseAnalysis struct {
	Action        string                `json:"action"`
	Exercises     []domain.ExerciseItem `json:"exercises"`
	DeleteTargets []string              `json:"deleteTargets"`
	TotalCalories float64               `json:"totalCalories"`
	TotalDuration float64               `json:"totalDuration"`
}

// Analyze classifies the exercise substring. Gateway failures and unparseable
// responses degrade to an error-action fallback, never an error return.
func (s *ExerciseAnalysisService) Analyze(ctx context.Context, text string, user *domain.User, todayItems []domain.ExerciseItem) *domain.ExerciseAnalysis {
	start := time.Now()

	prompt := buildExercisePrompt(text, user, todayItems)

	response := s.gateway.GenerateSmart(ctx, prompt)
	if strings.TrimSpace(response) == "" {
		return exerciseFallback()
	}

	payload := ExtractJSON(response)
	if payload == "" {
		return exerciseFallback()
	}

	var raw rawExerciseAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		s.log.Warn("exercise JSON parse failed", "error", err)
		return exerciseFallback()
	}

	action, ok := domain.ParseAction(raw.Action)
	if !ok {
		s.log.Warn("exercise analyzer returned unknown action", "action", raw.Action)
		return exerciseFallback()
	}

	result := &domain.ExerciseAnalysis{
		Action:        action,
		Exercises:     raw.Exercises,
		DeleteTargets: raw.DeleteTargets,
		TotalCalories: raw.TotalCalories,
		TotalDuration: raw.TotalDuration,
	}
	if result.Exercises == nil {
		result.Exercises = []domain.ExerciseItem{}
	}

	s.log.Info("exercise analysis complete",
		"action", result.Action,
		"items", len(result.Exercises),
		"deleteTargets", len(result.DeleteTargets),
		"took", time.Since(start))

	return result
}

func formatTodayExercises(items []domain.ExerciseItem) string {
	if len(items) == 0 {
		return "none\n"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s / %d min / %d kcal\n", item.Name, item.DurationMin, item.Calories))
	}
	return sb.String()
}

func formatProfile(user *domain.User) string {
	gender := user.Gender
	if gender == "" {
		gender = "unknown"
	}
	goal := user.GoalText
	if goal == "" {
		goal = "unknown"
	}
	bmi := 0.0
	if user.Height > 0 && user.Weight > 0 {
		heightM := user.Height / 100.0
		bmi = user.Weight / (heightM * heightM)
	}
	return fmt.Sprintf(
		"- gender: %s\n- age: %d\n- height: %.0f cm\n- weight: %.0f kg\n- BMI: %.1f\n- goal: %s\n",
		gender, user.Age(time.Now()), user.Height, user.Weight, bmi, goal)
}

func buildExercisePrompt(text string, user *domain.User, todayItems []domain.ExerciseItem) string {
	return fmt.Sprintf(`You are an exercise analysis AI that converts a user's workout diary entry into structured JSON.
The sentence may mix in meal or emotion content; analyze only the exercise parts.

------------------------------------------------------
[exercises recorded today] (must be used to judge update/delete/replace)
%s
------------------------------------------------------
[new input sentence]
%s
------------------------------------------------------
[user profile] (must be reflected in calorie estimates)
%s
------------------------------------------------------
[action rules]

replace (swap an existing exercise for another one)
cues: "instead of", "rather than", "replace with"
requires an existing exercise A and a new exercise B:
{ "action": "replace", "deleteTargets": ["jogging"], "exercises": [ ...running... ] }

update (change duration/intensity of an existing exercise)
cues: "change the time", "fix the calories", "make it shorter", "make it longer"
the exercise name must match an existing one; deleteTargets is always []

add
cues: "and", "also", "more", "another 30 minutes"
- same name as an existing exercise -> the durations and calories are meant to accumulate
- different name -> a new exercise
- deleteTargets is always []

delete
cues: "remove", "delete", "erase", "take out", "clear"
- delete one exercise: { "action": "delete", "deleteTargets": ["jogging"], "exercises": [] }
- delete all exercise: { "action": "delete", "deleteTargets": [], "exercises": [] }

------------------------------------------------------
[duplicate handling, very important]
1. if the input mentions an exercise already recorded today, do NOT create a
   new entry; it means merge into the existing one.
2. exercises[] must carry ONLY the newly reported duration and calories (the
   delta), not the accumulated totals; the server recomputes all totals.

------------------------------------------------------
[required JSON output, nothing else]
{
  "action": "add" | "update" | "delete" | "replace",
  "exercises": [
    {
      "category": "CARDIO" | "STRENGTH" | "PILATES" | "YOGA" | "STRETCHING" | "OTHER",
      "part": "FULL" | "CHEST" | "BACK" | "LOWER" | "ABS" | "SHOULDER" | "ARM" | "OTHER",
      "name": "exercise name",
      "durationMin": number,
      "intensity": "LOW" | "MEDIUM" | "HIGH",
      "calories": number
    }
  ],
  "deleteTargets": [],
  "totalCalories": number,
  "totalDuration": number
}`, formatTodayExercises(todayItems), text, formatProfile(user))
}

func exerciseFallback() *domain.ExerciseAnalysis {
	return &domain.ExerciseAnalysis{
		Action:    domain.ActionError,
		Exercises: []domain.ExerciseItem{},
		Message:   "AI analysis failed, please try again.",
	}
}
