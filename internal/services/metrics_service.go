package services

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sync"
	"time"

	"equipment-service/internal/cache"
	"equipment-service/internal/models"
	"equipment-service/internal/movement"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceVersion = "1.0.0"

// MetricsService define la interfaz del sistema de monitoring
type MetricsService interface {
	MovementListener

	GetMetrics(ctx context.Context) *models.MonitoringResponse
	RecordRequest(data models.RequestData)
	MovementRejected(assetCode string, kind movement.ErrorKind)
	HandoverRecorded()
	GetCacheStats() models.CacheMetrics
	GetDatabaseStats() models.DatabaseMetrics
	GetRedisStats(ctx context.Context) models.RedisMetrics
}

// metricsService implementa MetricsService
type metricsService struct {
	logger        *zap.Logger
	redisClient   *redis.Client
	dbPool        *sql.DB
	snapshotCache *cache.EquipmentCache

	// Métricas de requests HTTP
	requestsMutex sync.RWMutex
	requests      map[string]*models.EndpointMetrics
	slowRequests  []models.SlowRequest
	errors        []models.RequestError
	totalRequests int64
	totalTime     int64
	maxTime       int64
	minTime       int64

	// Métricas de movimientos
	movementsMutex sync.RWMutex
	byAction       map[string]int64
	rejections     map[string]int64
	totalMovements int64
	totalRejected  int64
	handovers      int64
	lastRecorded   *time.Time

	startTime time.Time
}

// NewMetricsService crea una nueva instancia del servicio de monitoring
func NewMetricsService(logger *zap.Logger, redisClient *redis.Client, dbPool *sql.DB, snapshotCache *cache.EquipmentCache) MetricsService {
	return &metricsService{
		logger:        logger,
		redisClient:   redisClient,
		dbPool:        dbPool,
		snapshotCache: snapshotCache,
		requests:      make(map[string]*models.EndpointMetrics),
		byAction:      make(map[string]int64),
		rejections:    make(map[string]int64),
		startTime:     time.Now(),
	}
}

// RecordRequest registra un request HTTP terminado
func (s *metricsService) RecordRequest(data models.RequestData) {
	s.requestsMutex.Lock()
	defer s.requestsMutex.Unlock()

	endpointKey := fmt.Sprintf("%s %s", data.Method, data.Endpoint)

	metrics, exists := s.requests[endpointKey]
	if !exists {
		metrics = &models.EndpointMetrics{}
		s.requests[endpointKey] = metrics
	}

	metrics.Count++
	durationMs := data.Duration.Milliseconds()
	metrics.TotalTime += durationMs
	metrics.AvgTime = float64(metrics.TotalTime) / float64(metrics.Count)

	s.totalRequests++
	s.totalTime += durationMs
	if durationMs > s.maxTime {
		s.maxTime = durationMs
	}
	if s.minTime == 0 || durationMs < s.minTime {
		s.minTime = durationMs
	}

	// Registrar request lento (> 1000ms)
	if durationMs > 1000 {
		s.slowRequests = append(s.slowRequests, models.SlowRequest{
			Endpoint:  endpointKey,
			Duration:  durationMs,
			Timestamp: data.Timestamp,
		})
		if len(s.slowRequests) > 100 {
			s.slowRequests = s.slowRequests[1:]
		}
	}

	if data.StatusCode >= 400 {
		s.errors = append(s.errors, models.RequestError{
			Endpoint:   endpointKey,
			StatusCode: data.StatusCode,
			Timestamp:  data.Timestamp,
		})
		if len(s.errors) > 100 {
			s.errors = s.errors[1:]
		}
	}
}

// MovementRecorded cuenta un movimiento confirmado (implementa
// MovementListener)
func (s *metricsService) MovementRecorded(_ context.Context, record *models.MovementRecord) {
	s.movementsMutex.Lock()
	defer s.movementsMutex.Unlock()

	s.totalMovements++
	s.byAction[string(record.Action)]++
	now := time.Now()
	s.lastRecorded = &now
}

// MovementRejected cuenta un rechazo de validación por kind
func (s *metricsService) MovementRejected(assetCode string, kind movement.ErrorKind) {
	s.movementsMutex.Lock()
	defer s.movementsMutex.Unlock()

	s.totalRejected++
	s.rejections[string(kind)]++
}

// HandoverRecorded cuenta un traspaso completo
func (s *metricsService) HandoverRecorded() {
	s.movementsMutex.Lock()
	defer s.movementsMutex.Unlock()

	s.handovers++
}

// GetMetrics arma la respuesta completa de monitoring
func (s *metricsService) GetMetrics(ctx context.Context) *models.MonitoringResponse {
	return &models.MonitoringResponse{
		Requests:    s.requestMetrics(),
		Movements:   s.movementMetrics(),
		Performance: s.performanceMetrics(),
		Cache:       s.GetCacheStats(),
		Database:    s.GetDatabaseStats(),
		System:      s.systemMetrics(),
		Redis:       s.GetRedisStats(ctx),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     serviceVersion,
	}
}

func (s *metricsService) requestMetrics() models.RequestMetrics {
	s.requestsMutex.RLock()
	defer s.requestsMutex.RUnlock()

	byEndpoint := make(map[string]models.EndpointMetrics, len(s.requests))
	for key, m := range s.requests {
		byEndpoint[key] = *m
	}

	return models.RequestMetrics{
		Total:             len(s.requests),
		ByEndpoint:        byEndpoint,
		SlowRequests:      append([]models.SlowRequest(nil), s.slowRequests...),
		Errors:            append([]models.RequestError(nil), s.errors...),
		TotalRequests:     int(s.totalRequests),
		SlowRequestsCount: len(s.slowRequests),
		ErrorsCount:       len(s.errors),
	}
}

func (s *metricsService) movementMetrics() models.MovementMetrics {
	s.movementsMutex.RLock()
	defer s.movementsMutex.RUnlock()

	byAction := make(map[string]int64, len(s.byAction))
	for k, v := range s.byAction {
		byAction[k] = v
	}
	rejections := make(map[string]int64, len(s.rejections))
	for k, v := range s.rejections {
		rejections[k] = v
	}

	return models.MovementMetrics{
		Total:         s.totalMovements,
		ByAction:      byAction,
		Rejections:    rejections,
		RejectedTotal: s.totalRejected,
		Handovers:     s.handovers,
		LastRecorded:  s.lastRecorded,
	}
}

func (s *metricsService) performanceMetrics() models.PerformanceMetrics {
	s.requestsMutex.RLock()
	defer s.requestsMutex.RUnlock()

	var avg float64
	if s.totalRequests > 0 {
		avg = float64(s.totalTime) / float64(s.totalRequests)
	}

	return models.PerformanceMetrics{
		AvgResponseTime: avg,
		MaxResponseTime: s.maxTime,
		MinResponseTime: s.minTime,
	}
}

// GetCacheStats obtiene estadísticas del cache de snapshots
func (s *metricsService) GetCacheStats() models.CacheMetrics {
	stats := s.snapshotCache.GetStats()

	var hitRate float64
	if stats.TotalRequests > 0 {
		hitRate = float64(stats.Hits) / float64(stats.TotalRequests)
	}

	return models.CacheMetrics{
		Status:        "online",
		TotalKeys:     stats.TotalKeys,
		HitRate:       hitRate,
		TotalHits:     stats.Hits,
		TotalMisses:   stats.Misses,
		TotalRequests: stats.TotalRequests,
	}
}

// GetDatabaseStats obtiene estadísticas del pool de conexiones
func (s *metricsService) GetDatabaseStats() models.DatabaseMetrics {
	status := "online"
	if err := s.dbPool.Ping(); err != nil {
		status = "offline"
		s.logger.Error("Database ping failed", zap.Error(err))
	}

	stats := s.dbPool.Stats()
	return models.DatabaseMetrics{
		Status:             status,
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
	}
}

// GetRedisStats verifica la conexión a Redis
func (s *metricsService) GetRedisStats(ctx context.Context) models.RedisMetrics {
	if s.redisClient == nil {
		return models.RedisMetrics{Connected: false, Status: "disabled"}
	}
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.logger.Error("Redis ping failed", zap.Error(err))
		return models.RedisMetrics{Connected: false, Status: "offline"}
	}
	return models.RedisMetrics{Connected: true, Status: "online"}
}

func (s *metricsService) systemMetrics() models.SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(s.startTime)

	return models.SystemMetrics{
		Uptime:      uptime.Seconds(),
		UptimeHours: fmt.Sprintf("%.2fh", uptime.Hours()),
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   formatBytes(mem.HeapAlloc),
		HeapSys:     formatBytes(mem.HeapSys),
		NumGC:       mem.NumGC,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMG"[exp])
}
