package app

import (
	"habit_tracker_backend/docs"
	"habit_tracker_backend/internal/config"
	"habit_tracker_backend/internal/middleware"
	"habit_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		registerHabitRoutes(authGroup, c)
		registerReportRoutes(authGroup, c)

		authGroup.GET("/settings", c.settings.GetSettings)
		authGroup.PUT("/settings", c.settings.UpdateSettings)

		authGroup.GET("/system/status", c.system.GetStatus)
	}
}

func registerHabitRoutes(rg *gin.RouterGroup, c *controllers) {
	habits := rg.Group("/habits")
	{
		habits.POST("", c.habit.CreateHabit)
		habits.GET("", c.habit.ListHabits)
		habits.GET("/:id", c.habit.GetHabit)
		habits.PATCH("/:id", c.habit.UpdateHabit)
		habits.DELETE("/:id", c.habit.DeleteHabit)
		habits.POST("/:id/complete", c.habit.CompleteHabit)
		habits.POST("/:id/completions/sync", c.habit.SyncCompletion)
		habits.GET("/:id/calendar/:month", c.habit.GetCalendar)
		habits.GET("/:id/skip-days", c.habit.GetSkipDays)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, c *controllers) {
	reports := rg.Group("/reports/habits")
	{
		reports.GET("/weekly", c.report.GetWeeklyReport)
		reports.GET("/monthly", c.report.GetMonthlyReport)
	}
}
