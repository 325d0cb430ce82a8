package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/healthchat/backend/internal/config"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/services"
)

// Server wires the HTTP surface over the services. Identity comes from the
// X-User-ID header; the gateway in front of this service is trusted to have
// authenticated it.
type Server struct {
	engine      *gin.Engine
	cfg         config.ServerConfig
	users       *services.UserService
	unified     *services.UnifiedService
	mealSvc     *services.MealService
	exerciseSvc *services.ExerciseService
	emotionSvc  *services.EmotionService
	dayLogs     *services.DayLogService
	coach       *services.CoachService
	log         *slog.Logger
}

func New(
	cfg config.ServerConfig,
	users *services.UserService,
	unified *services.UnifiedService,
	mealSvc *services.MealService,
	exerciseSvc *services.ExerciseService,
	emotionSvc *services.EmotionService,
	dayLogs *services.DayLogService,
	coach *services.CoachService,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:      gin.New(),
		cfg:         cfg,
		users:       users,
		unified:     unified,
		mealSvc:     mealSvc,
		exerciseSvc: exerciseSvc,
		emotionSvc:  emotionSvc,
		dayLogs:     dayLogs,
		coach:       coach,
		log:         logger.With("component", "http"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), s.requestLog())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api", s.identify())
	{
		api.POST("/ai/analyze", s.handleAnalyze)

		api.GET("/meals/today", s.handleMealToday)
		api.GET("/meals", s.handleMealByDate)
		api.PUT("/meals", s.handleMealManualSave)

		api.GET("/exercises/today", s.handleExerciseToday)
		api.GET("/exercises", s.handleExerciseByDate)
		api.PUT("/exercises", s.handleExerciseManualSave)

		api.GET("/emotions/today", s.handleEmotionToday)
		api.GET("/emotions", s.handleEmotionByDate)
		api.PUT("/emotions", s.handleEmotionManualSave)

		api.GET("/logs", s.handleDayLog)
		api.GET("/coach/feedback", s.handleCoachFeedback)
	}
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	addr := ":" + s.cfg.Port
	s.log.Info("http server starting", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

const userKey = "currentUser"

// identify resolves the X-User-ID header into a loaded profile and aborts
// with 401/404 when it cannot.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
			return
		}
		user, err := s.users.GetByID(c.Request.Context(), uint(id))
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}
