package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/utils"
)

// DayLogService maintains the per-(user,date) log row that ties the three
// aggregates together and caches the cross-domain summary.
type DayLogService struct {
	dayLogs    domain.DayLogRepository
	meals      domain.MealRepository
	activities domain.ActivityRepository
	emotions   domain.EmotionRepository
	feedback   domain.FeedbackRepository
	log        *slog.Logger
}

func NewDayLogService(
	dayLogs domain.DayLogRepository,
	meals domain.MealRepository,
	activities domain.ActivityRepository,
	emotions domain.EmotionRepository,
	feedback domain.FeedbackRepository,
) *DayLogService {
	return &DayLogService{
		dayLogs:    dayLogs,
		meals:      meals,
		activities: activities,
		emotions:   emotions,
		feedback:   feedback,
		log:        logger.With("component", "daylog-service"),
	}
}

func (s *DayLogService) GetByDate(ctx context.Context, user *domain.User, date time.Time) (*domain.DailyLog, error) {
	return s.dayLogs.FindByUserAndDate(ctx, user.ID, date)
}

func (s *DayLogService) getOrCreate(ctx context.Context, user *domain.User, date time.Time) (*domain.DailyLog, error) {
	log, err := s.dayLogs.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = &domain.DailyLog{UserID: user.ID, Date: date}
	}
	return log, nil
}

// AttachMeal points the log at the saved meal aggregate and refreshes the
// summary.
func (s *DayLogService) AttachMeal(ctx context.Context, user *domain.User, meal *domain.DailyMeal) error {
	log, err := s.getOrCreate(ctx, user, meal.Date)
	if err != nil {
		return err
	}
	log.MealID = &meal.ID
	if err := s.recalcSummary(ctx, log); err != nil {
		return err
	}
	return s.dayLogs.Save(ctx, log)
}

// AttachActivity points the log at the saved exercise aggregate and refreshes
// the summary.
func (s *DayLogService) AttachActivity(ctx context.Context, user *domain.User, activity *domain.DailyActivity) error {
	log, err := s.getOrCreate(ctx, user, activity.Date)
	if err != nil {
		return err
	}
	log.ActivityID = &activity.ID
	if err := s.recalcSummary(ctx, log); err != nil {
		return err
	}
	return s.dayLogs.Save(ctx, log)
}

// AttachEmotion points the log at the saved emotion aggregate and caches its
// primary emotion as the day's mood summary.
func (s *DayLogService) AttachEmotion(ctx context.Context, user *domain.User, emotion *domain.DailyEmotion) error {
	log, err := s.getOrCreate(ctx, user, emotion.Date)
	if err != nil {
		return err
	}
	log.EmotionID = &emotion.ID
	log.MoodSummary = emotion.PrimaryEmotion
	return s.dayLogs.Save(ctx, log)
}

// ClearMeal nulls the meal reference before the meal row is deleted; a no-op
// when no log row exists.
func (s *DayLogService) ClearMeal(ctx context.Context, user *domain.User, date time.Time) error {
	log, err := s.dayLogs.FindByUserAndDate(ctx, user.ID, date)
	if err != nil || log == nil {
		return err
	}
	log.MealID = nil
	if err := s.recalcSummary(ctx, log); err != nil {
		return err
	}
	return s.dayLogs.Save(ctx, log)
}

// ClearActivity nulls the activity reference before the activity row is
// deleted; a no-op when no log row exists.
func (s *DayLogService) ClearActivity(ctx context.Context, user *domain.User, date time.Time) error {
	log, err := s.dayLogs.FindByUserAndDate(ctx, user.ID, date)
	if err != nil || log == nil {
		return err
	}
	log.ActivityID = nil
	if err := s.recalcSummary(ctx, log); err != nil {
		return err
	}
	return s.dayLogs.Save(ctx, log)
}

// ClearEmotion nulls the emotion reference and mood summary before the
// emotion row is deleted; a no-op when no log row exists.
func (s *DayLogService) ClearEmotion(ctx context.Context, user *domain.User, date time.Time) error {
	log, err := s.dayLogs.FindByUserAndDate(ctx, user.ID, date)
	if err != nil || log == nil {
		return err
	}
	log.EmotionID = nil
	log.MoodSummary = ""
	return s.dayLogs.Save(ctx, log)
}

// DeleteDay wipes the whole day: the log row, all three aggregates and any
// generated feedback. References are cleared first so no FK dangles even if a
// later delete fails.
func (s *DayLogService) DeleteDay(ctx context.Context, user *domain.User) error {
	today := utils.Today()

	log, err := s.dayLogs.FindByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return err
	}
	if log != nil {
		log.MealID = nil
		log.ActivityID = nil
		log.EmotionID = nil
		log.MoodSummary = ""
		log.TotalCalories = 0
		log.TotalExerciseTime = 0
		if err := s.dayLogs.Save(ctx, log); err != nil {
			return err
		}
	}

	if err := s.meals.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	if err := s.activities.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	if err := s.emotions.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	if err := s.feedback.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	if err := s.dayLogs.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}

	s.log.Info("day wiped", "user", user.ID, "date", today.Format("2006-01-02"))
	return nil
}

// recalcSummary refreshes the cached totals from whichever aggregates the log
// still references. Net calories is intake minus burn.
func (s *DayLogService) recalcSummary(ctx context.Context, log *domain.DailyLog) error {
	var intake, burn, exerciseTime float64

	if log.MealID != nil {
		meal, err := s.meals.FindByUserAndDate(ctx, log.UserID, log.Date)
		if err != nil {
			return err
		}
		if meal != nil {
			intake = meal.TotalCalories
		}
	}
	if log.ActivityID != nil {
		activity, err := s.activities.FindByUserAndDate(ctx, log.UserID, log.Date)
		if err != nil {
			return err
		}
		if activity != nil {
			burn = activity.TotalCalories
			exerciseTime = activity.TotalDuration
		}
	}

	log.TotalCalories = intake - burn
	log.TotalExerciseTime = exerciseTime
	return nil
}
