package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthchat/backend/internal/domain"
	apperrors "github.com/healthchat/backend/internal/errors"
	"github.com/healthchat/backend/internal/services"
	"github.com/healthchat/backend/internal/utils"
)

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}

// queryDate parses ?date=YYYY-MM-DD, defaulting to today.
func queryDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return utils.Today(), true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return parsed, true
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	status := http.StatusInternalServerError
	message := "internal error"

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrorTypeValidation:
			status = http.StatusBadRequest
		case apperrors.ErrorTypeExternal:
			status = http.StatusBadGateway
		}
		message = appErr.Message
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := s.unified.AnalyzeAll(c.Request.Context(), currentUser(c), req.Text)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMealToday(c *gin.Context) {
	meal, err := s.mealSvc.GetToday(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *Server) handleMealByDate(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	meal, err := s.mealSvc.GetByDate(c.Request.Context(), currentUser(c), date)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

type mealSaveRequest struct {
	Date  string            `json:"date"`
	Meals []domain.MealSlot `json:"meals" binding:"required"`
}

func (s *Server) handleMealManualSave(c *gin.Context) {
	var req mealSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meals is required"})
		return
	}
	date := utils.Today()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	meal, err := s.mealSvc.SaveManual(c.Request.Context(), currentUser(c), date, req.Meals)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *Server) handleExerciseToday(c *gin.Context) {
	user := currentUser(c)
	activity, err := s.exerciseSvc.GetToday(c.Request.Context(), user)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activity":        activity,
		"recommendedBurn": s.users.RecommendedBurn(user),
	})
}

func (s *Server) handleExerciseByDate(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	user := currentUser(c)
	activity, err := s.exerciseSvc.GetByDate(c.Request.Context(), user, date)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activity":        activity,
		"recommendedBurn": s.users.RecommendedBurn(user),
	})
}

type exerciseSaveRequest struct {
	Date      string                `json:"date"`
	Exercises []domain.ExerciseItem `json:"exercises" binding:"required"`
}

func (s *Server) handleExerciseManualSave(c *gin.Context) {
	var req exerciseSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exercises is required"})
		return
	}
	date := utils.Today()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	activity, err := s.exerciseSvc.SaveManual(c.Request.Context(), currentUser(c), date, req.Exercises)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (s *Server) handleEmotionToday(c *gin.Context) {
	summary, err := s.emotionSvc.GetToday(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type emotionSaveRequest struct {
	Date      string     `json:"date"`
	Emotions  []string   `json:"emotions" binding:"required"`
	Scores    []int      `json:"scores" binding:"required"`
	Summaries []string   `json:"summaries"`
	Keywords  [][]string `json:"keywords"`
	RawText   string     `json:"rawText"`
}

func (s *Server) handleEmotionManualSave(c *gin.Context) {
	var req emotionSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emotions and scores are required"})
		return
	}
	if len(req.Emotions) != len(req.Scores) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emotions and scores must have equal length"})
		return
	}
	date := utils.Today()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	emotion, err := s.emotionSvc.SaveManual(c.Request.Context(), currentUser(c), date, &domain.EmotionAnalysis{
		Emotions:  req.Emotions,
		Scores:    req.Scores,
		Summaries: req.Summaries,
		Keywords:  req.Keywords,
		RawText:   req.RawText,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.ToEmotionSummary(emotion))
}

func (s *Server) handleEmotionByDate(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	summary, err := s.emotionSvc.GetByDate(c.Request.Context(), currentUser(c), date)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleDayLog(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	log, err := s.dayLogs.GetByDate(c.Request.Context(), currentUser(c), date)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if log == nil {
		s.abortWithError(c, apperrors.ErrDayLogNotFound)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (s *Server) handleCoachFeedback(c *gin.Context) {
	feedback, err := s.coach.GetDailyFeedback(c.Request.Context(), currentUser(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
