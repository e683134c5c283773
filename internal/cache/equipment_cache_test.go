package cache

import (
	"context"
	"testing"
	"time"

	"equipment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(maxL1Size int) *EquipmentCache {
	return NewEquipmentCache(nil, maxL1Size, time.Minute, zap.NewNop())
}

func sampleEquipment(assetCode string) *models.Equipment {
	holder := 7
	return &models.Equipment{
		ID:                1,
		AssetCode:         assetCode,
		Name:              "Cordless drill",
		Status:            models.StatusCheckedOut,
		CurrentHolderID:   &holder,
		IsCheckoutAllowed: true,
	}
}

func TestCache_SetGet(t *testing.T) {
	ec := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "DRL-001", sampleEquipment("DRL-001")))

	got, ok := ec.Get(ctx, "DRL-001")
	require.True(t, ok)
	assert.Equal(t, "DRL-001", got.AssetCode)
	assert.Equal(t, models.StatusCheckedOut, got.Status)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	ec := newTestCache(10)

	got, ok := ec.Get(context.Background(), "NOPE-1")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_GetReturnsClone(t *testing.T) {
	ec := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "DRL-001", sampleEquipment("DRL-001")))

	first, ok := ec.Get(ctx, "DRL-001")
	require.True(t, ok)
	first.Status = models.StatusRetired
	*first.CurrentHolderID = 99

	second, ok := ec.Get(ctx, "DRL-001")
	require.True(t, ok)
	assert.Equal(t, models.StatusCheckedOut, second.Status, "mutating a returned snapshot must not touch the cache")
	assert.Equal(t, 7, *second.CurrentHolderID)
}

func TestCache_Invalidate(t *testing.T) {
	ec := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "DRL-001", sampleEquipment("DRL-001")))
	require.NoError(t, ec.Invalidate(ctx, "DRL-001"))

	_, ok := ec.Get(ctx, "DRL-001")
	assert.False(t, ok)
}

func TestCache_EvictsWhenFull(t *testing.T) {
	ec := newTestCache(2)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "A-1", sampleEquipment("A-1")))
	require.NoError(t, ec.Set(ctx, "A-2", sampleEquipment("A-2")))
	require.NoError(t, ec.Set(ctx, "A-3", sampleEquipment("A-3")))

	stats := ec.GetStats()
	assert.LessOrEqual(t, stats.TotalKeys, 2)
}

func TestCache_Stats(t *testing.T) {
	ec := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, ec.Set(ctx, "DRL-001", sampleEquipment("DRL-001")))
	ec.Get(ctx, "DRL-001")
	ec.Get(ctx, "NOPE-1")

	stats := ec.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.TotalRequests)
}
