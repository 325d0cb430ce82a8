package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
)

// RouterService splits one free-form diary message into the meal, exercise
// and emotion substrings (or deletion sentinels) the analyzers consume.
type RouterService struct {
	gateway domain.LLMGateway
	model   string
	log     *slog.Logger
}

func NewRouterService(gateway domain.LLMGateway, model string) *RouterService {
	return &RouterService{
		gateway: gateway,
		model:   model,
		log:     logger.With("component", "router"),
	}
}

// Route classifies the text. On a blank or unparseable gateway response all
// three fields come back empty; this never fails.
func (s *RouterService) Route(ctx context.Context, text string) domain.RoutingResult {
	response := s.gateway.Generate(ctx, s.model, buildRoutingPrompt(text))
	if response == "" {
		s.log.Warn("routing returned blank response")
		return domain.RoutingResult{}
	}

	payload := ExtractJSON(response)
	if payload == "" {
		s.log.Warn("routing response not boundable as JSON")
		return domain.RoutingResult{}
	}

	var routed domain.RoutingResult
	if err := json.Unmarshal([]byte(payload), &routed); err != nil {
		s.log.Warn("routing JSON parse failed", "error", err)
		return domain.RoutingResult{}
	}

	s.log.Info("routing complete",
		"meal", preview(routed.MealText, 40),
		"exercise", preview(routed.ExerciseText, 40),
		"emotion", preview(routed.EmotionText, 40))

	return routed
}

func buildRoutingPrompt(text string) string {
	return fmt.Sprintf(`You are a router that splits a health diary message into [meal], [exercise] and [emotion] parts.

Return ONLY this JSON object. No explanations, no headers, no code fences, no natural language.

{
  "mealText": "",
  "exerciseText": "",
  "emotionText": ""
}

Classification rules:
- sentences about food, meals or eating (breakfast, lunch, dinner, snack) -> mealText
- sentences about exercise, workouts, physical activity or calories burned -> exerciseText
- sentences about feelings, mood or mental state -> emotionText

Ignore meta phrases such as "please record", "analyze this", "I want to", "by the way";
extract only the parts that describe actual events.

Exercise cue words (always route to exerciseText when present):
push-ups, squats, lunges, plank, walking, running, jogging, stair climbing,
cycling, gym, weights, swimming, yoga, pilates, stretching.

Deletion commands:
- "delete my meals" or similar -> mealText = "DELETE_MEAL"
- "delete my exercise" or similar -> exerciseText = "DELETE_EXERCISE"
- "delete my emotions/mood" or similar -> emotionText = "DELETE_EMOTION"
- "delete everything today" / "clear the whole day" -> set all three sentinels at once.

Output format:
Return exactly the JSON shape above. Leave fields as "" when nothing matches. Never use null.

Input message:
"%s"`, text)
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
