package middleware

import (
	"context"
	"net/http"
	"time"

	"equipment-service/internal/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker verifica las dependencias del servicio
type HealthChecker struct {
	postgresDB *database.PostgresDB
	redisDB    *database.RedisDB
	logger     *zap.Logger
}

// NewHealthChecker crea una nueva instancia. redisDB puede ser nil si el
// cache L2 está deshabilitado.
func NewHealthChecker(postgresDB *database.PostgresDB, redisDB *database.RedisDB, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		postgresDB: postgresDB,
		redisDB:    redisDB,
		logger:     logger,
	}
}

// HealthCheck maneja GET /health
func (h *HealthChecker) HealthCheck(c *gin.Context) {
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  make(map[string]interface{}),
	}

	// PostgreSQL
	postgresStatus := "healthy"
	if err := h.postgresDB.Ping(); err != nil {
		postgresStatus = "unhealthy"
		status["status"] = "unhealthy"
		h.logger.Error("PostgreSQL health check failed", zap.Error(err))
	}

	postgresStats := h.postgresDB.GetStats()
	status["services"].(map[string]interface{})["postgresql"] = gin.H{
		"status": postgresStatus,
		"stats": gin.H{
			"max_open_connections": postgresStats.MaxOpenConnections,
			"open_connections":     postgresStats.OpenConnections,
			"in_use":               postgresStats.InUse,
			"idle":                 postgresStats.Idle,
		},
	}

	// Redis: opcional, su caída degrada pero no tumba el servicio (el
	// ledger sigue siendo la fuente de verdad).
	redisStatus := "healthy"
	if h.redisDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.redisDB.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
			if status["status"] == "healthy" {
				status["status"] = "degraded"
			}
			h.logger.Error("Redis health check failed", zap.Error(err))
		}
	} else {
		redisStatus = "disabled"
	}

	status["services"].(map[string]interface{})["redis"] = gin.H{
		"status": redisStatus,
	}

	httpStatus := http.StatusOK
	if status["status"] == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, status)
}
