package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/logger"
	"google.golang.org/api/option"
)

const (
	maxPromptChars = 6000
	maxEmbedChars  = 3000
)

// geminiProvider is the raw API surface behind the gateway, kept narrow so
// retry and fallback behavior can be exercised against fakes.
type geminiProvider interface {
	generateContent(ctx context.Context, model, prompt string) (string, error)
	embedContent(ctx context.Context, text string) ([]float32, error)
}

type sdkProvider struct {
	client     *genai.Client
	embedModel string
}

func (p *sdkProvider) generateContent(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", nil
	}
	return string(text), nil
}

func (p *sdkProvider) embedContent(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.EmbeddingModel(p.embedModel).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, nil
	}
	return resp.Embedding.Values, nil
}

// GeminiService is the LLM gateway: truncation, retry with exponential
// backoff, pro-to-flash fallback, and defensive JSON extraction. Exhausted
// retries yield empty results rather than errors; callers must treat blank
// output as "unavailable".
type GeminiService struct {
	cfg      config.GeminiConfig
	provider geminiProvider
	sleep    func(time.Duration)
	log      *slog.Logger
}

// NewGeminiService creates the gateway backed by the Gemini API.
func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiService{
		cfg:      cfg,
		provider: &sdkProvider{client: client, embedModel: cfg.EmbedModel},
		sleep:    time.Sleep,
		log:      logger.With("component", "gemini"),
	}, nil
}

// GenerateSmart tries the pro model first and falls back to flash when the
// pro result comes back blank.
func (s *GeminiService) GenerateSmart(ctx context.Context, prompt string) string {
	if result := s.Generate(ctx, s.cfg.ProModel, prompt); strings.TrimSpace(result) != "" {
		return result
	}

	s.log.Warn("pro model returned blank, falling back to flash")

	if result := s.Generate(ctx, s.cfg.FlashModel, prompt); strings.TrimSpace(result) != "" {
		return result
	}

	s.log.Error("flash fallback failed, returning empty response")
	return ""
}

// Generate calls the given model with retries and exponential backoff. After
// exhausting retries it returns the empty string.
func (s *GeminiService) Generate(ctx context.Context, model, prompt string) string {
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars] + "\n...(truncated)..."
	}

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		text, err := s.provider.generateContent(callCtx, model, prompt)
		cancel()

		if err == nil {
			return text
		}

		delay := s.cfg.BaseDelay * (1 << attempt)
		s.log.Warn("generate retry",
			"model", model,
			"attempt", attempt+1,
			"max", s.cfg.MaxRetries,
			"delay", delay,
			"error", err)
		s.sleep(delay)
	}

	s.log.Error("generate failed after all retries", "model", model)
	return ""
}

// Embed returns the embedding vector for text, or nil when the input is blank
// or retries are exhausted.
func (s *GeminiService) Embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars]
	}

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		vector, err := s.provider.embedContent(callCtx, text)
		cancel()

		if err == nil {
			return vector
		}

		delay := s.cfg.BaseDelay * (1 << attempt)
		s.log.Warn("embed retry",
			"attempt", attempt+1,
			"max", s.cfg.MaxRetries,
			"delay", delay,
			"error", err)
		s.sleep(delay)
	}

	s.log.Error("embed failed after all retries")
	return nil
}

// ExtractJSON pulls the JSON object out of a model response, stripping fenced
// code markers and bounding on the outermost braces. Returns "" when no
// object can be bounded; callers treat that as a parse failure.
func ExtractJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
