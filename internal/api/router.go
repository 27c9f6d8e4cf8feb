package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/psaworks/psa/internal/api/v1"
	"github.com/psaworks/psa/internal/config"
	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/metrics"
	"github.com/psaworks/psa/internal/pyroscope"
	"github.com/psaworks/psa/internal/rest/middleware"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Billing    *v1.BillingHandler
	TimePeriod *v1.TimePeriodHandler
	TimeEntry  *v1.TimeEntryHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, pyroscopeSvc *pyroscope.Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(pyroscopeSvc),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// Every v1 route is tenant scoped
	v1Group := router.Group("/v1")
	v1Group.Use(middleware.TenantMiddleware, middleware.SentryTagsMiddleware)

	billing := v1Group.Group("/billing")
	{
		billing.POST("/calculate", handlers.Billing.CalculateBilling)
	}

	timePeriods := v1Group.Group("/time-periods")
	{
		timePeriods.GET("", handlers.TimePeriod.List)
		timePeriods.POST("", handlers.TimePeriod.Create)
		timePeriods.GET("/current", handlers.TimePeriod.GetCurrent)
		timePeriods.GET("/latest", handlers.TimePeriod.GetLatest)
		timePeriods.POST("/preview", handlers.TimePeriod.Generate)
		timePeriods.POST("/generate", handlers.TimePeriod.GenerateAndSave)
	}

	timeEntries := v1Group.Group("/time-entries")
	{
		timeEntries.POST("/rollover", handlers.TimeEntry.Rollover)
	}

	return router
}
