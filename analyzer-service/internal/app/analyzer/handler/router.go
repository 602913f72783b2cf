package handler

import (
	"time"

	"foodreview/pkg/logger"
	"foodreview/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(reviewHandler *ReviewHandler, healthHandler *HealthCheckHandler, allowOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(recoverToJSON))

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(corsConfig(allowOrigins)))

	router.GET("/health", healthHandler.Liveness)
	router.GET("/health/readiness", healthHandler.Readiness)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", reviewHandler.Home)

	api := router.Group("/api")
	{
		api.POST("/analyze-review", reviewHandler.AnalyzeReview)
		api.GET("/reviews", reviewHandler.ListReviews)
	}

	return router
}

func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range allowOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(allowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = allowOrigins
	return cfg
}
