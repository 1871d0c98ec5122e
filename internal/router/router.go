package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aiexam/aiexam-backend/internal/config"
	"github.com/aiexam/aiexam-backend/internal/handler"
	"github.com/aiexam/aiexam-backend/internal/middleware"
	"github.com/aiexam/aiexam-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Generation    *handler.GenerationHandler
	Exam          *handler.ExamHandler
	StudentPortal *handler.StudentPortalHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Generation is rate-limited per IP: every accepted request costs an
	// upstream completion call.
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRatePerMinute, time.Minute)

	// ─── 1. Faculty Group ──────────────────────────────────────────────
	facultyAPI := router.Group("/api/v1/faculty")
	{
		facultyAPI.POST("/questions/generate", generateLimiter.Middleware(), handlers.Generation.Generate)
		facultyAPI.POST("/exams", handlers.Exam.CreateExam)
		facultyAPI.GET("/exams", handlers.Exam.ListExams)
		facultyAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	{
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.StartExam)
		studentAPI.GET("/sessions/:session_id", handlers.StudentPortal.GetSession)
		studentAPI.PUT("/sessions/:session_id/answers", handlers.StudentPortal.RecordAnswer)
		studentAPI.POST("/sessions/:session_id/submit", handlers.StudentPortal.SubmitExam)
		studentAPI.GET("/results", handlers.StudentPortal.ListResults)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	{
		adminAPI.POST("/exams/:exam_id/complete", handlers.Exam.CompleteExam)
	}

	return router
}
