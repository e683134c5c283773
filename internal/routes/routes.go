package routes

import (
	"equipment-service/internal/handlers"
	"equipment-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(router *gin.Engine, movementHandler *handlers.MovementHandler, equipmentHandler *handlers.EquipmentHandler, feedHandler *handlers.FeedHandler, monitoringHandler *handlers.MonitoringHandler, healthChecker *middleware.HealthChecker) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Movement routes (las operaciones centrales)
		movements := v1.Group("/movements")
		{
			movements.POST("", movementHandler.RecordMovement)
			movements.POST("/handover", movementHandler.RecordHandover)
			movements.GET("/ws", feedHandler.ServeWS)
		}

		// Equipment routes (consultas de solo lectura)
		equipment := v1.Group("/equipment")
		{
			equipment.GET("/low-stock", equipmentHandler.GetLowStock)
			equipment.GET("/location/:id", equipmentHandler.GetByLocation)
			equipment.GET("/holder/:id", equipmentHandler.GetByHolder)
			equipment.GET("/:code", equipmentHandler.GetSnapshot)
			equipment.GET("/:code/history", equipmentHandler.GetHistory)
		}

		// Monitoring routes
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", monitoringHandler.GetMetrics)
			monitoring.GET("/metrics/summary", monitoringHandler.GetMetricsSummary)
		}
	}

	// Health check en raíz
	router.GET("/health", healthChecker.HealthCheck)

	// API info en raíz
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Equipment Movement Service API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health": "/health",
				"api":    "/api/v1",
				"movements": gin.H{
					"record":   "POST /api/v1/movements",
					"handover": "POST /api/v1/movements/handover",
					"feed":     "GET /api/v1/movements/ws",
				},
				"equipment": gin.H{
					"snapshot":  "GET /api/v1/equipment/:code",
					"history":   "GET /api/v1/equipment/:code/history",
					"location":  "GET /api/v1/equipment/location/:id",
					"holder":    "GET /api/v1/equipment/holder/:id",
					"low_stock": "GET /api/v1/equipment/low-stock",
				},
			},
		})
	})
}
