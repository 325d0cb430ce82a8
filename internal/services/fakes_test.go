package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/healthchat/backend/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway scripts gateway responses per prompt and counts calls.
type fakeGateway struct {
	mu            sync.Mutex
	generateCalls int
	embedCalls    int
	respond       func(prompt string) string
	embedFn       func(text string) []float32
}

func (g *fakeGateway) Generate(_ context.Context, _, prompt string) string {
	g.mu.Lock()
	g.generateCalls++
	g.mu.Unlock()
	if g.respond == nil {
		return ""
	}
	return g.respond(prompt)
}

func (g *fakeGateway) GenerateSmart(ctx context.Context, prompt string) string {
	return g.Generate(ctx, "", prompt)
}

func (g *fakeGateway) Embed(_ context.Context, text string) []float32 {
	g.mu.Lock()
	g.embedCalls++
	g.mu.Unlock()
	if g.embedFn == nil {
		return nil
	}
	return g.embedFn(text)
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateCalls
}

func dateKey(userID uint, date time.Time) string {
	return fmt.Sprintf("%d#%s", userID, date.Format("2006-01-02"))
}

type memMealRepo struct {
	mu     sync.Mutex
	rows   map[string]*domain.DailyMeal
	nextID uint
}

func newMemMealRepo() *memMealRepo {
	return &memMealRepo{rows: map[string]*domain.DailyMeal{}}
}

func (r *memMealRepo) FindByUserAndDate(_ context.Context, userID uint, date time.Time) (*domain.DailyMeal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memMealRepo) Save(_ context.Context, meal *domain.DailyMeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if meal.ID == 0 {
		r.nextID++
		meal.ID = r.nextID
	}
	cp := *meal
	r.rows[dateKey(meal.UserID, meal.Date)] = &cp
	return nil
}

func (r *memMealRepo) DeleteByUserAndDate(_ context.Context, userID uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(userID, date))
	return nil
}

type memActivityRepo struct {
	mu     sync.Mutex
	rows   map[string]*domain.DailyActivity
	nextID uint
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{rows: map[string]*domain.DailyActivity{}}
}

func (r *memActivityRepo) FindByUserAndDate(_ context.Context, userID uint, date time.Time) (*domain.DailyActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	cp.Exercises = append([]domain.ExerciseItem(nil), row.Exercises...)
	return &cp, nil
}

func (r *memActivityRepo) Save(_ context.Context, activity *domain.DailyActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.ID == 0 {
		r.nextID++
		activity.ID = r.nextID
	}
	cp := *activity
	cp.Exercises = append([]domain.ExerciseItem(nil), activity.Exercises...)
	r.rows[dateKey(activity.UserID, activity.Date)] = &cp
	return nil
}

func (r *memActivityRepo) Delete(_ context.Context, activity *domain.DailyActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(activity.UserID, activity.Date))
	return nil
}

func (r *memActivityRepo) DeleteByUserAndDate(_ context.Context, userID uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(userID, date))
	return nil
}

func (r *memActivityRepo) ReplaceItems(ctx context.Context, activity *domain.DailyActivity, items []domain.ExerciseItem) error {
	activity.Exercises = items
	return r.Save(ctx, activity)
}

type memEmotionRepo struct {
	mu     sync.Mutex
	rows   map[string]*domain.DailyEmotion
	nextID uint
}

func newMemEmotionRepo() *memEmotionRepo {
	return &memEmotionRepo{rows: map[string]*domain.DailyEmotion{}}
}

func (r *memEmotionRepo) FindByUserAndDate(_ context.Context, userID uint, date time.Time) (*domain.DailyEmotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memEmotionRepo) Save(_ context.Context, emotion *domain.DailyEmotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if emotion.ID == 0 {
		r.nextID++
		emotion.ID = r.nextID
	}
	cp := *emotion
	r.rows[dateKey(emotion.UserID, emotion.Date)] = &cp
	return nil
}

func (r *memEmotionRepo) DeleteByUserAndDate(_ context.Context, userID uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(userID, date))
	return nil
}

type memDayLogRepo struct {
	mu     sync.Mutex
	rows   map[string]*domain.DailyLog
	nextID uint
}

func newMemDayLogRepo() *memDayLogRepo {
	return &memDayLogRepo{rows: map[string]*domain.DailyLog{}}
}

func (r *memDayLogRepo) FindByUserAndDate(_ context.Context, userID uint, date time.Time) (*domain.DailyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memDayLogRepo) Save(_ context.Context, log *domain.DailyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == 0 {
		r.nextID++
		log.ID = r.nextID
	}
	cp := *log
	r.rows[dateKey(log.UserID, log.Date)] = &cp
	return nil
}

func (r *memDayLogRepo) DeleteByUserAndDate(_ context.Context, userID uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(userID, date))
	return nil
}

type memFeedbackRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.CoachFeedback
}

func newMemFeedbackRepo() *memFeedbackRepo {
	return &memFeedbackRepo{rows: map[string]*domain.CoachFeedback{}}
}

func (r *memFeedbackRepo) FindByUserAndDate(_ context.Context, userID uint, date time.Time) (*domain.CoachFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dateKey(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memFeedbackRepo) Save(_ context.Context, feedback *domain.CoachFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *feedback
	r.rows[dateKey(feedback.UserID, feedback.Date)] = &cp
	return nil
}

func (r *memFeedbackRepo) DeleteByUserAndDate(_ context.Context, userID uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, dateKey(userID, date))
	return nil
}

// testStack bundles the reconciliation services over in-memory repos.
type testStack struct {
	meals      *memMealRepo
	activities *memActivityRepo
	emotions   *memEmotionRepo
	dayLogs    *memDayLogRepo
	feedback   *memFeedbackRepo

	dayLogSvc   *DayLogService
	mealSvc     *MealService
	exerciseSvc *ExerciseService
	emotionSvc  *EmotionService
}

func newTestStack() *testStack {
	s := &testStack{
		meals:      newMemMealRepo(),
		activities: newMemActivityRepo(),
		emotions:   newMemEmotionRepo(),
		dayLogs:    newMemDayLogRepo(),
		feedback:   newMemFeedbackRepo(),
	}
	s.dayLogSvc = NewDayLogService(s.dayLogs, s.meals, s.activities, s.emotions, s.feedback)
	s.mealSvc = NewMealService(s.meals, s.dayLogSvc)
	s.exerciseSvc = NewExerciseService(s.activities, s.dayLogSvc)
	s.emotionSvc = NewEmotionService(s.emotions, s.dayLogSvc)
	return s
}

func testUser() *domain.User {
	return &domain.User{ID: 1, Email: "test@example.com", Gender: "male", Height: 175, Weight: 70}
}
