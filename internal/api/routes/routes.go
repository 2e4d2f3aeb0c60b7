package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"applytrack/internal/api/handlers"
	"applytrack/internal/api/middleware"
	"applytrack/internal/config"
	"applytrack/internal/tracker"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *tracker.Service, probes map[string]handlers.Probe) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.Server.AllowedOrigins))
	e.Use(middleware.RequestValidation(cfg.Upload.MaxSize))
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.RequestTimeout, cfg.Server.AnalysisTimeout, cfg.Server.BulkTimeout))

	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(probes))
		health.GET("/live", handlers.LivenessHandler)
	}

	api := e.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", handlers.CreateUserHandler(svc))
			users.GET("/:id", handlers.GetUserHandler(svc))
		}

		resumes := api.Group("/resumes")
		{
			resumes.POST("/upload", handlers.UploadResumeHandler(cfg, svc))
			resumes.GET("/:userId", handlers.ListResumesHandler(svc))
			resumes.PATCH("/:id", handlers.UpdateResumeHandler(svc))
			resumes.GET("/:id/history", handlers.ResumeHistoryHandler(svc))
		}

		jobs := api.Group("/job-descriptions")
		{
			jobs.POST("", handlers.CreateJobDescriptionHandler(svc))
			jobs.GET("/:userId", handlers.ListJobDescriptionsHandler(svc))
		}

		api.POST("/job-match", handlers.JobMatchHandler(svc))

		applications := api.Group("/applications")
		{
			applications.POST("", handlers.CreateApplicationHandler(svc))
			applications.GET("/:userId", handlers.ListApplicationsHandler(svc))
			applications.PATCH("/:id/status", handlers.UpdateApplicationStatusHandler(svc))
			applications.GET("/:id/cover-letter", handlers.ApplicationCoverLetterHandler(svc))
		}

		api.POST("/cover-letters/generate", handlers.GenerateCoverLetterHandler(svc))
		api.GET("/cover-letters/:userId", handlers.ListCoverLettersHandler(svc))

		api.POST("/interview-questions/generate", handlers.GenerateInterviewQuestionsHandler(svc))
		api.GET("/interview-questions/:jobDescriptionId", handlers.LatestInterviewQuestionsHandler(svc))

		api.POST("/skill-gap/analyze", handlers.AnalyzeSkillGapHandler(svc))
		api.GET("/skill-gaps/:userId", handlers.ListSkillGapsHandler(svc))

		api.POST("/auto-apply", handlers.AutoApplyHandler(svc))
		api.POST("/bulk-auto-apply", handlers.BulkAutoApplyHandler(svc))

		api.GET("/dashboard/:userId", handlers.DashboardHandler(svc))
	}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "applytrack",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}
