package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/concierge/backend/config"
	"github.com/concierge/backend/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router. recorder may be nil.
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger, recorder *metrics.Recorder) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	if recorder != nil {
		router.Use(MetricsMiddleware(recorder))
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)
	if recorder != nil {
		router.GET("/metrics", gin.WrapH(recorder.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		v1.POST("/search", handler.Search)
		v1.POST("/chat", handler.Chat)
	}

	return router
}
