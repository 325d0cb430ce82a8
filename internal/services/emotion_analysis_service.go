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

// EmotionAnalysisService extracts the emotions of one message. The action is
// inferred from the wording of the text itself; the model's own action claim
// is never trusted for this domain.
type EmotionAnalysisService struct {
	gateway domain.LLMGateway
	log     *slog.Logger
}

func NewEmotionAnalysisService(gateway domain.LLMGateway) *EmotionAnalysisService {
	return &EmotionAnalysisService{
		gateway: gateway,
		log:     logger.With("component", "emotion-analyzer"),
	}
}

type rawEmotionAnalysis struct {
	Emotions       []string   `json:"emotions"`
	Scores         []int      `json:"scores"`
	Summaries      []string   `json:"summaries"`
	Keywords       [][]string `json:"keywords"`
	PrimaryEmotion string     `json:"primaryEmotion"`
	PrimaryScore   int        `json:"primaryScore"`
}

// Analyze extracts this message's emotions. Failures yield an empty no-op
// result; nothing is thrown past this boundary.
func (s *EmotionAnalysisService) Analyze(ctx context.Context, text string) *domain.EmotionAnalysis {
	if strings.TrimSpace(text) == "" {
		return emotionNoop(text)
	}

	start := time.Now()

	response := s.gateway.GenerateSmart(ctx, buildEmotionPrompt(text))
	if strings.TrimSpace(response) == "" {
		s.log.Warn("emotion analysis returned blank response")
		return emotionNoop(text)
	}

	payload := ExtractJSON(response)
	if payload == "" {
		return emotionNoop(text)
	}

	var raw rawEmotionAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		s.log.Warn("emotion JSON parse failed", "error", err)
		return emotionNoop(text)
	}

	// Truncate to the shortest sequence so the four arrays stay parallel
	// even when the model miscounts.
	n := len(raw.Emotions)
	if len(raw.Scores) < n {
		n = len(raw.Scores)
	}
	if len(raw.Summaries) < n {
		n = len(raw.Summaries)
	}
	if len(raw.Keywords) < n {
		n = len(raw.Keywords)
	}

	result := &domain.EmotionAnalysis{
		Action:         detectEmotionAction(text),
		Emotions:       raw.Emotions[:n],
		Scores:         raw.Scores[:n],
		Summaries:      raw.Summaries[:n],
		Keywords:       raw.Keywords[:n],
		PrimaryEmotion: raw.PrimaryEmotion,
		PrimaryScore:   raw.PrimaryScore,
		RawText:        text,
	}

	s.log.Info("emotion analysis complete",
		"action", result.Action,
		"primary", result.PrimaryEmotion,
		"count", n,
		"took", time.Since(start))

	return result
}

// detectEmotionAction infers the action from deletion/correction wording.
func detectEmotionAction(text string) domain.Action {
	lower := strings.ToLower(text)

	for _, word := range []string{"delete", "remove", "erase", "clear"} {
		if strings.Contains(lower, word) {
			return domain.ActionDelete
		}
	}
	for _, word := range []string{"actually", "correction", "change that", "i meant"} {
		if strings.Contains(lower, word) {
			return domain.ActionUpdate
		}
	}
	return domain.ActionAdd
}

func buildEmotionPrompt(text string) string {
	return fmt.Sprintf(`Analyze ALL emotions in the sentence and return ONLY the JSON below.
No explanations, no headers, no code fences.

{
  "emotions": [],          // e.g. ["sad", "happy"]
  "scores": [],            // intensity per emotion (0-100)
  "summaries": [],         // one-line summary per emotion
  "keywords": [],          // noun keywords per emotion (2D array)
  "primaryEmotion": "",    // the emotion with the highest score
  "primaryScore": 0
}

Rules:

[1] emotion extraction
- find every emotion (sadness, joy, stress, irritation, fatigue, ...) in order of appearance.

[2] scores
- scores[i] is the intensity of emotions[i], range 0-100.

[3] summaries
- summaries[i] is a short one-sentence summary of the situation behind emotions[i].

[4] keywords (important)
- keywords[i] are the noun causes of emotions[i]:
  nouns only, no particles, no verb phrases, no sentence fragments;
  examples:
    "tired and gloomy" -> ["fatigue", "gloom"]
    "talking with a friend cheered me up" -> ["friend", "conversation"]
    "stressed because of an assignment" -> ["assignment", "stress"]
  1-3 keywords per emotion.

[5] primaryEmotion / primaryScore
- the emotion with the highest score.

Sentence to analyze:
"%s"`, text)
}

func emotionNoop(text string) *domain.EmotionAnalysis {
	return &domain.EmotionAnalysis{
		Action:    domain.ActionAdd,
		Emotions:  []string{},
		Scores:    []int{},
		Summaries: []string{},
		Keywords:  [][]string{},
		RawText:   text,
	}
}
