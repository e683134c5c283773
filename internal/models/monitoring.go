package models

import "time"

// MonitoringResponse respuesta completa del sistema de monitoring
type MonitoringResponse struct {
	Requests    RequestMetrics     `json:"requests"`
	Movements   MovementMetrics    `json:"movements"`
	Performance PerformanceMetrics `json:"performance"`
	Cache       CacheMetrics       `json:"cache"`
	Database    DatabaseMetrics    `json:"database"`
	System      SystemMetrics      `json:"system"`
	Redis       RedisMetrics       `json:"redis"`
	Timestamp   string             `json:"timestamp"`
	Version     string             `json:"version"`
}

// RequestMetrics métricas de requests HTTP
type RequestMetrics struct {
	Total             int                        `json:"total"`
	ByEndpoint        map[string]EndpointMetrics `json:"by_endpoint"`
	SlowRequests      []SlowRequest              `json:"slow_requests"`
	Errors            []RequestError             `json:"errors"`
	TotalRequests     int                        `json:"total_requests"`
	SlowRequestsCount int                        `json:"slow_requests_count"`
	ErrorsCount       int                        `json:"errors_count"`
}

// MovementMetrics métricas del subsistema de movimientos
type MovementMetrics struct {
	Total         int64            `json:"total"`
	ByAction      map[string]int64 `json:"by_action"`
	Rejections    map[string]int64 `json:"rejections"`
	RejectedTotal int64            `json:"rejected_total"`
	Handovers     int64            `json:"handovers"`
	LastRecorded  *time.Time       `json:"last_recorded,omitempty"`
}

// EndpointMetrics métricas por endpoint
type EndpointMetrics struct {
	Count     int     `json:"count"`
	AvgTime   float64 `json:"avg_time"`
	TotalTime int64   `json:"total_time"`
}

// SlowRequest request lento (> 1s)
type SlowRequest struct {
	Endpoint  string    `json:"endpoint"`
	Duration  int64     `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestError error de request
type RequestError struct {
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// PerformanceMetrics métricas de rendimiento
type PerformanceMetrics struct {
	AvgResponseTime float64 `json:"avg_response_time"`
	MaxResponseTime int64   `json:"max_response_time"`
	MinResponseTime int64   `json:"min_response_time"`
}

// CacheMetrics métricas del cache de snapshots
type CacheMetrics struct {
	Status        string  `json:"status"`
	TotalKeys     int     `json:"total_keys"`
	HitRate       float64 `json:"hit_rate"`
	TotalHits     int64   `json:"total_hits"`
	TotalMisses   int64   `json:"total_misses"`
	TotalRequests int64   `json:"total_requests"`
}

// DatabaseMetrics métricas de la base de datos
type DatabaseMetrics struct {
	Status             string `json:"status"`
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
}

// SystemMetrics métricas del proceso
type SystemMetrics struct {
	Uptime      float64 `json:"uptime"`
	UptimeHours string  `json:"uptime_hours"`
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   string  `json:"heap_alloc"`
	HeapSys     string  `json:"heap_sys"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
	Platform    string  `json:"platform"`
}

// RedisMetrics métricas de Redis
type RedisMetrics struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
}

// RequestData datos de un request individual
type RequestData struct {
	Endpoint   string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
}
