package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/utils"
)

// UnifiedService orchestrates one diary message end to end: route the text,
// fan the analyzers out concurrently, then persist the results in a fixed
// meal, exercise, emotion order. Writes for the same (user, day) are
// serialized through a keyed lock so concurrent messages cannot interleave
// their read-merge-write cycles.
type UnifiedService struct {
	router      *RouterService
	mealAI      *MealAnalysisService
	exerciseAI  *ExerciseAnalysisService
	emotionAI   *EmotionAnalysisService
	mealSvc     *MealService
	exerciseSvc *ExerciseService
	emotionSvc  *EmotionService
	dayLogs     *DayLogService
	locks       dayLocks
	log         *slog.Logger
}

func NewUnifiedService(
	router *RouterService,
	mealAI *MealAnalysisService,
	exerciseAI *ExerciseAnalysisService,
	emotionAI *EmotionAnalysisService,
	mealSvc *MealService,
	exerciseSvc *ExerciseService,
	emotionSvc *EmotionService,
	dayLogs *DayLogService,
) *UnifiedService {
	return &UnifiedService{
		router:      router,
		mealAI:      mealAI,
		exerciseAI:  exerciseAI,
		emotionAI:   emotionAI,
		mealSvc:     mealSvc,
		exerciseSvc: exerciseSvc,
		emotionSvc:  emotionSvc,
		dayLogs:     dayLogs,
		log:         logger.With("component", "unified-service"),
	}
}

// AnalyzeAll processes one message for the user and returns the combined
// result. Analyzer failures surface as error-action entries inside the
// result; only storage failures return an error.
func (s *UnifiedService) AnalyzeAll(ctx context.Context, user *domain.User, text string) (*domain.UnifiedResult, error) {
	requestID := uuid.NewString()
	log := s.log.With("request", requestID, "user", user.ID)
	start := time.Now()

	unlock := s.locks.lock(dayKey(user.ID, utils.Today()))
	defer unlock()

	routed := s.router.Route(ctx, text)

	// Wiping the whole day needs no analyzer calls at all.
	if routed.IsFullDelete() {
		if err := s.dayLogs.DeleteDay(ctx, user); err != nil {
			return nil, err
		}
		log.Info("full day delete", "took", time.Since(start))
		return &domain.UnifiedResult{
			Meal:     domain.MealDeleted(),
			Exercise: domain.ExerciseDeleted(),
			Emotion:  domain.EmotionDeleted(),
		}, nil
	}

	result := &domain.UnifiedResult{}
	var mealAnalysis *domain.MealAnalysis
	var exerciseAnalysis *domain.ExerciseAnalysis
	var emotionAnalysis *domain.EmotionAnalysis

	var wg sync.WaitGroup

	switch {
	case routed.MealText == "":
		result.Meal = domain.MealEmpty()
	case routed.MealText == domain.DeleteMealSentinel:
		if err := s.mealSvc.DeleteToday(ctx, user); err != nil {
			return nil, err
		}
		result.Meal = domain.MealDeleted()
	default:
		today, err := s.mealSvc.GetToday(ctx, user)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			mealAnalysis = s.mealAI.Analyze(ctx, routed.MealText, today)
		}()
	}

	switch {
	case routed.ExerciseText == "":
		result.Exercise = &domain.ExerciseAnalysis{Action: domain.ActionAdd, Exercises: []domain.ExerciseItem{}}
	case routed.ExerciseText == domain.DeleteExerciseSentinel:
		if err := s.exerciseSvc.DeleteToday(ctx, user); err != nil {
			return nil, err
		}
		result.Exercise = domain.ExerciseDeleted()
	default:
		todayItems, err := s.exerciseSvc.TodayItems(ctx, user)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			exerciseAnalysis = s.exerciseAI.Analyze(ctx, routed.ExerciseText, user, todayItems)
		}()
	}

	switch {
	case routed.EmotionText == "":
		result.Emotion = emptyEmotionSummary()
	case routed.EmotionText == domain.DeleteEmotionSentinel:
		if err := s.emotionSvc.DeleteToday(ctx, user); err != nil {
			return nil, err
		}
		result.Emotion = domain.EmotionDeleted()
	default:
		wg.Add(1)
		go func() {
			defer wg.Done()
			emotionAnalysis = s.emotionAI.Analyze(ctx, routed.EmotionText)
		}()
	}

	wg.Wait()

	// Persistence runs sequentially so the day log references settle in a
	// deterministic order.
	if mealAnalysis != nil {
		result.Meal = mealAnalysis
		if err := s.persistMeal(ctx, user, mealAnalysis); err != nil {
			return nil, err
		}
	}
	if exerciseAnalysis != nil {
		result.Exercise = exerciseAnalysis
		if err := s.persistExercise(ctx, user, exerciseAnalysis); err != nil {
			return nil, err
		}
	}
	if emotionAnalysis != nil {
		summary, err := s.persistEmotion(ctx, user, emotionAnalysis)
		if err != nil {
			return nil, err
		}
		result.Emotion = summary
	}

	log.Info("message analyzed",
		"mealAction", result.Meal.Action,
		"exerciseAction", result.Exercise.Action,
		"emotionAction", result.Emotion.Action,
		"took", time.Since(start))

	return result, nil
}

func (s *UnifiedService) persistMeal(ctx context.Context, user *domain.User, analysis *domain.MealAnalysis) error {
	if analysis.Action == domain.ActionError {
		return nil
	}
	if analysis.Action == domain.ActionAdd && len(analysis.Meals) == 0 {
		return nil
	}
	meal, err := s.mealSvc.SaveAnalysis(ctx, user, analysis)
	if err != nil {
		return err
	}
	return s.dayLogs.AttachMeal(ctx, user, meal)
}

func (s *UnifiedService) persistExercise(ctx context.Context, user *domain.User, analysis *domain.ExerciseAnalysis) error {
	if analysis.Action == domain.ActionError {
		return nil
	}
	if analysis.Action == domain.ActionAdd && len(analysis.Exercises) == 0 {
		return nil
	}
	activity, err := s.exerciseSvc.SaveAnalysis(ctx, user, analysis)
	if err != nil {
		return err
	}
	// A nil activity means the delete emptied the day and removed the row.
	if activity == nil {
		return nil
	}
	return s.dayLogs.AttachActivity(ctx, user, activity)
}

func (s *UnifiedService) persistEmotion(ctx context.Context, user *domain.User, analysis *domain.EmotionAnalysis) (*domain.EmotionSummary, error) {
	if analysis.Action == domain.ActionDelete {
		if err := s.emotionSvc.DeleteToday(ctx, user); err != nil {
			return nil, err
		}
		return domain.EmotionDeleted(), nil
	}
	emotion, err := s.emotionSvc.SaveAnalysis(ctx, user, analysis)
	if err != nil {
		return nil, err
	}
	if emotion == nil {
		return emptyEmotionSummary(), nil
	}
	if err := s.dayLogs.AttachEmotion(ctx, user, emotion); err != nil {
		return nil, err
	}
	return ToEmotionSummary(emotion), nil
}

func emptyEmotionSummary() *domain.EmotionSummary {
	return &domain.EmotionSummary{
		Action:    domain.ActionAdd,
		Emotions:  []string{},
		Scores:    []int{},
		Summaries: []string{},
		Keywords:  [][]string{},
	}
}

func dayKey(userID uint, date time.Time) string {
	return fmt.Sprintf("%d:%s", userID, date.Format("2006-01-02"))
}

// dayLocks hands out one mutex per key. Entries are never evicted; the key
// space is bounded by active (user, day) pairs.
type dayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (d *dayLocks) lock(key string) func() {
	d.mu.Lock()
	if d.locks == nil {
		d.locks = make(map[string]*sync.Mutex)
	}
	m, ok := d.locks[key]
	if !ok {
		m = &sync.Mutex{}
		d.locks[key] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}
