package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"equipment-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheStats estadísticas del caché
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
}

// EquipmentCache implementa caché multi-nivel para snapshots del ledger
//
// Snapshots are plain reads; every committed movement invalidates the
// affected asset code, so a hit is never older than the last commit.
type EquipmentCache struct {
	// L1 Cache: memoria local (más rápido)
	l1Cache map[string]*models.Equipment
	l1Mutex sync.RWMutex

	// L2 Cache: Redis (compartido entre instancias). Nil disables L2.
	redisClient *redis.Client

	maxL1Size int
	ttl       time.Duration

	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewEquipmentCache crea una nueva instancia del caché
func NewEquipmentCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *EquipmentCache {
	ec := &EquipmentCache{
		l1Cache:     make(map[string]*models.Equipment),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		logger:      logger,
	}

	go ec.cleanupL1Cache()

	return ec
}

// GetStats retorna estadísticas del caché
func (ec *EquipmentCache) GetStats() CacheStats {
	ec.statsMutex.RLock()
	defer ec.statsMutex.RUnlock()

	ec.l1Mutex.RLock()
	totalKeys := len(ec.l1Cache)
	ec.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          ec.hits,
		Misses:        ec.misses,
		TotalRequests: ec.hits + ec.misses,
		TotalKeys:     totalKeys,
	}
}

// Get busca un snapshot con caché multi-nivel. Devuelve (nil, false) en
// miss; el caller va a la base y repuebla con Set.
func (ec *EquipmentCache) Get(ctx context.Context, assetCode string) (*models.Equipment, bool) {
	start := time.Now()

	// 1. L1 Cache (memoria local)
	if eq := ec.getFromL1(assetCode); eq != nil {
		ec.recordHit()
		ec.logger.Debug("L1 cache hit",
			zap.String("asset_code", assetCode),
			zap.Duration("latency", time.Since(start)))
		return eq.Clone(), true
	}

	// 2. L2 Cache (Redis)
	if eq, err := ec.getFromL2(ctx, assetCode); err == nil && eq != nil {
		ec.setToL1(assetCode, eq)
		ec.recordHit()
		ec.logger.Debug("L2 cache hit",
			zap.String("asset_code", assetCode),
			zap.Duration("latency", time.Since(start)))
		return eq.Clone(), true
	}

	ec.recordMiss()
	ec.logger.Debug("Cache miss",
		zap.String("asset_code", assetCode),
		zap.Duration("latency", time.Since(start)))
	return nil, false
}

// Set almacena un snapshot en ambos niveles de caché
func (ec *EquipmentCache) Set(ctx context.Context, assetCode string, eq *models.Equipment) error {
	ec.setToL1(assetCode, eq.Clone())
	return ec.setToL2(ctx, assetCode, eq)
}

// Invalidate invalida un snapshot en ambos cachés. Called after every
// committed movement.
func (ec *EquipmentCache) Invalidate(ctx context.Context, assetCode string) error {
	ec.l1Mutex.Lock()
	delete(ec.l1Cache, assetCode)
	ec.l1Mutex.Unlock()

	if ec.redisClient == nil {
		return nil
	}
	return ec.redisClient.Del(ctx, ec.key(assetCode)).Err()
}

func (ec *EquipmentCache) key(assetCode string) string {
	return fmt.Sprintf("equipment:%s", assetCode)
}

func (ec *EquipmentCache) recordHit() {
	ec.statsMutex.Lock()
	ec.hits++
	ec.statsMutex.Unlock()
}

func (ec *EquipmentCache) recordMiss() {
	ec.statsMutex.Lock()
	ec.misses++
	ec.statsMutex.Unlock()
}

func (ec *EquipmentCache) getFromL1(assetCode string) *models.Equipment {
	ec.l1Mutex.RLock()
	defer ec.l1Mutex.RUnlock()
	return ec.l1Cache[assetCode]
}

func (ec *EquipmentCache) setToL1(assetCode string, eq *models.Equipment) {
	ec.l1Mutex.Lock()
	defer ec.l1Mutex.Unlock()

	if len(ec.l1Cache) >= ec.maxL1Size {
		ec.evictOne()
	}

	ec.l1Cache[assetCode] = eq
}

// evictOne elimina una entrada arbitraria cuando L1 está lleno
func (ec *EquipmentCache) evictOne() {
	for key := range ec.l1Cache {
		delete(ec.l1Cache, key)
		break
	}
}

func (ec *EquipmentCache) getFromL2(ctx context.Context, assetCode string) (*models.Equipment, error) {
	if ec.redisClient == nil {
		return nil, nil
	}
	data, err := ec.redisClient.Get(ctx, ec.key(assetCode)).Result()
	if err != nil {
		return nil, err
	}

	var eq models.Equipment
	if err := json.Unmarshal([]byte(data), &eq); err != nil {
		return nil, err
	}
	return &eq, nil
}

func (ec *EquipmentCache) setToL2(ctx context.Context, assetCode string, eq *models.Equipment) error {
	if ec.redisClient == nil {
		return nil
	}
	data, err := json.Marshal(eq)
	if err != nil {
		return err
	}
	return ec.redisClient.Set(ctx, ec.key(assetCode), data, ec.ttl).Err()
}

// cleanupL1Cache limpia el L1 cache periódicamente
func (ec *EquipmentCache) cleanupL1Cache() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ec.l1Mutex.Lock()
		ec.logger.Debug("L1 cache cleanup", zap.Int("items", len(ec.l1Cache)))
		ec.l1Mutex.Unlock()
	}
}
