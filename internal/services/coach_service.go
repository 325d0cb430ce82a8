package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/rag"
	"github.com/healthchat/backend/internal/utils"
)

// CoachService generates the daily coaching feedback: a day summary built
// from the persisted aggregates, grounded on retrieved guideline snippets.
// One feedback per (user, date); a second request the same day returns the
// stored one.
type CoachService struct {
	gateway     domain.LLMGateway
	searcher    *rag.Searcher
	feedback    domain.FeedbackRepository
	mealSvc     *MealService
	exerciseSvc *ExerciseService
	emotionSvc  *EmotionService
	users       *UserService
	log         *slog.Logger
}

func NewCoachService(
	gateway domain.LLMGateway,
	searcher *rag.Searcher,
	feedback domain.FeedbackRepository,
	mealSvc *MealService,
	exerciseSvc *ExerciseService,
	emotionSvc *EmotionService,
	users *UserService,
) *CoachService {
	return &CoachService{
		gateway:     gateway,
		searcher:    searcher,
		feedback:    feedback,
		mealSvc:     mealSvc,
		exerciseSvc: exerciseSvc,
		emotionSvc:  emotionSvc,
		users:       users,
		log:         logger.With("component", "coach-service"),
	}
}

// GetDailyFeedback returns today's coaching feedback, generating and storing
// it on first request.
func (s *CoachService) GetDailyFeedback(ctx context.Context, user *domain.User) (string, error) {
	today := utils.Today()

	stored, err := s.feedback.FindByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return "", err
	}
	if stored != nil {
		return stored.Feedback, nil
	}

	summary, err := s.buildDaySummary(ctx, user)
	if err != nil {
		return "", err
	}

	matches, err := s.searcher.Search(ctx, summary)
	if err != nil {
		return "", err
	}

	text := s.gateway.GenerateSmart(ctx, buildCoachPrompt(summary, matches))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("feedback generation failed")
	}

	if err := s.feedback.Save(ctx, &domain.CoachFeedback{
		UserID:   user.ID,
		Date:     today,
		Feedback: text,
	}); err != nil {
		return "", err
	}

	s.log.Info("feedback generated", "user", user.ID, "sources", len(matches))
	return text, nil
}

func (s *CoachService) buildDaySummary(ctx context.Context, user *domain.User) (string, error) {
	meal, err := s.mealSvc.GetToday(ctx, user)
	if err != nil {
		return "", err
	}
	activity, err := s.exerciseSvc.GetToday(ctx, user)
	if err != nil {
		return "", err
	}
	emotion, err := s.emotionSvc.GetToday(ctx, user)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(formatProfile(user))
	sb.WriteString(fmt.Sprintf("- recommended daily burn: %.0f kcal\n", s.users.RecommendedBurn(user)))
	sb.WriteString(fmt.Sprintf("- intake today: %.0f kcal (protein %.0f g, fat %.0f g, carbs %.0f g)\n",
		meal.TotalCalories, meal.TotalProtein, meal.TotalFat, meal.TotalCarbs))
	sb.WriteString(fmt.Sprintf("- exercise today: %.0f min, %.0f kcal burned\n",
		activity.TotalDuration, activity.TotalCalories))
	if emotion.PrimaryEmotion != "" {
		sb.WriteString(fmt.Sprintf("- dominant mood: %s (%d/100)\n", emotion.PrimaryEmotion, emotion.PrimaryScore))
	} else {
		sb.WriteString("- dominant mood: not recorded\n")
	}
	return sb.String(), nil
}

func buildCoachPrompt(summary string, matches []rag.Match) string {
	var literature strings.Builder
	if len(matches) == 0 {
		literature.WriteString("(no literature found)\n")
	} else {
		for _, m := range matches {
			literature.WriteString(fmt.Sprintf("[%s] %s\n", m.Source, m.Text))
		}
	}

	return fmt.Sprintf(`You are a health coach writing today's feedback for the user below.
Base every recommendation on the user's actual numbers and the cited literature.
When no literature is available, say so and give only general common-sense advice.
Write 3-5 short sentences, warm but concrete. Plain text only, no JSON, no markdown.

[today: %s]
%s
[reference literature]
%s`, time.Now().Format("2006-01-02"), summary, literature.String())
}
