package handlers

import (
	"net/http"
	"time"

	"equipment-service/internal/models"
	"equipment-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MonitoringHandler expone las métricas del servicio
type MonitoringHandler struct {
	metricsService services.MetricsService
	logger         *zap.Logger
}

// NewMonitoringHandler crea una nueva instancia del handler
func NewMonitoringHandler(metricsService services.MetricsService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		metricsService: metricsService,
		logger:         logger,
	}
}

// GetMetrics maneja GET /monitoring/metrics
func (h *MonitoringHandler) GetMetrics(c *gin.Context) {
	metrics := h.metricsService.GetMetrics(c.Request.Context())
	c.JSON(http.StatusOK, metrics)
}

// GetMetricsSummary maneja GET /monitoring/metrics/summary
func (h *MonitoringHandler) GetMetricsSummary(c *gin.Context) {
	metrics := h.metricsService.GetMetrics(c.Request.Context())

	summary := gin.H{
		"requests": gin.H{
			"total":         metrics.Requests.TotalRequests,
			"errors":        metrics.Requests.ErrorsCount,
			"slow_requests": metrics.Requests.SlowRequestsCount,
		},
		"movements": gin.H{
			"total":     metrics.Movements.Total,
			"rejected":  metrics.Movements.RejectedTotal,
			"handovers": metrics.Movements.Handovers,
			"by_action": metrics.Movements.ByAction,
		},
		"cache": gin.H{
			"hit_rate":   metrics.Cache.HitRate,
			"total_keys": metrics.Cache.TotalKeys,
			"status":     metrics.Cache.Status,
		},
		"database": gin.H{
			"open_connections": metrics.Database.OpenConnections,
			"status":           metrics.Database.Status,
		},
		"system": gin.H{
			"uptime":     metrics.System.UptimeHours,
			"goroutines": metrics.System.Goroutines,
		},
		"timestamp": metrics.Timestamp,
	}

	c.JSON(http.StatusOK, summary)
}

// RecordRequestMiddleware middleware para registrar cada request terminado
func (h *MonitoringHandler) RecordRequestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if h.shouldSkipMonitoring(path) {
			return
		}

		h.metricsService.RecordRequest(models.RequestData{
			Endpoint:   path,
			Method:     c.Request.Method,
			Duration:   time.Since(start),
			StatusCode: c.Writer.Status(),
			Timestamp:  time.Now(),
		})
	}
}

// shouldSkipMonitoring excluye los endpoints del propio monitoring
func (h *MonitoringHandler) shouldSkipMonitoring(path string) bool {
	excludedPaths := []string{
		"/api/v1/monitoring/metrics",
		"/api/v1/monitoring/metrics/summary",
		"/health",
		"/",
	}

	for _, excluded := range excludedPaths {
		if path == excluded {
			return true
		}
	}
	return false
}
