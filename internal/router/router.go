package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-online/internal/config"
	"github.com/stemsi/exstem-online/internal/handler"
	"github.com/stemsi/exstem-online/internal/middleware"
	"github.com/stemsi/exstem-online/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Admin         *handler.AdminHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
	Monitor       *handler.MonitorHandler
	// User serves the account API; nil leaves /register and /login unrouted.
	User *handler.UserHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	identities middleware.IdentityLoader,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 0. Account API ────────────────────────────────────────────────
	if handlers.User != nil {
		router.POST("/register", handlers.User.Register)
		router.POST("/login", handlers.User.Login)
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authGroup := router.Group("/api/v1/auth")
	{
		authGroup.POST("/student/login", authLimiter.Middleware(), handlers.Auth.StudentLogin)
		authGroup.POST("/admin/login", authLimiter.Middleware(), handlers.Auth.AdminLogin)
		authGroup.POST("/logout", middleware.RequireAnyJWT(auth), handlers.Auth.Logout)
		authGroup.GET("/me", middleware.RequireAnyJWT(auth), middleware.LoadIdentity(identities), handlers.Auth.Me)
	}

	// ─── 2. Student Group ──────────────────────────────────────────────
	student := router.Group("/api/v1/student")
	student.Use(middleware.RequireStudentJWT(auth), middleware.LoadIdentity(identities), middleware.NoStore())
	{
		student.GET("/lobby", handlers.StudentPortal.GetLobby)

		exams := student.Group("/exams/:subject_id")
		exams.POST("/start", handlers.StudentPortal.StartExam)
		exams.GET("/state", handlers.StudentPortal.GetState)
		exams.PUT("/answers", handlers.StudentPortal.SelectAnswer)
		exams.PUT("/cursor", handlers.StudentPortal.Navigate)
		exams.POST("/violations", handlers.StudentPortal.ReportViolation)
		exams.POST("/submit", handlers.StudentPortal.SubmitExam)

		student.GET("/results", handlers.StudentPortal.GetResults)
		student.GET("/results/:subject_id", handlers.StudentPortal.GetResultDetail)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentJWT(auth), middleware.LoadIdentity(identities))
	{
		ws.GET("/student/exams/:subject_id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 4. Admin Group ────────────────────────────────────────────────
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdminJWT(auth), middleware.LoadIdentity(identities), middleware.NoStore())
	{
		admin.GET("/statistics", handlers.Admin.GetStatistics)
		admin.GET("/results", handlers.Admin.ListResults)
		admin.GET("/results/export", handlers.Admin.ExportResults)
		admin.GET("/students", handlers.Admin.ListStudents)
		admin.GET("/subjects", handlers.Admin.ListSubjects)
		admin.GET("/schedules", handlers.Admin.ListSchedules)

		admin.GET("/monitor", handlers.Monitor.GetOverview)
		admin.GET("/monitor/stream", handlers.Monitor.StreamOverview)
		admin.GET("/violations", handlers.Monitor.ListViolations)
		admin.GET("/violations/summary", handlers.Monitor.ViolationSummary)
	}

	return router
}
