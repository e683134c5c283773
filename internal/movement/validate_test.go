package movement

import (
	"testing"

	"equipment-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// discreteTool es un equipo serializado listo para salir: una unidad cuya
// disponibilidad la codifica el status.
func discreteTool() *models.Equipment {
	serial := "SN-0042"
	return &models.Equipment{
		ID:                1,
		AssetCode:         "DRL-001",
		Name:              "Cordless drill",
		IsCheckoutAllowed: true,
		IsSerialized:      true,
		SerialNumber:      &serial,
		Status:            models.StatusAvailable,
		CurrentLocationID: intPtr(10),
	}
}

// pooledTool es un equipo no consumible con disponibilidad por cantidad.
func pooledTool(total, available int) *models.Equipment {
	return &models.Equipment{
		ID:                2,
		AssetCode:         "EXT-010",
		Name:              "Extension cord",
		IsCheckoutAllowed: true,
		IsQuantityTracked: true,
		TotalQuantity:     total,
		AvailableQuantity: available,
		Status:            models.StatusAvailable,
		CurrentLocationID: intPtr(10),
	}
}

func consumable(total, available int) *models.Equipment {
	return &models.Equipment{
		ID:                3,
		AssetCode:         "GLV-100",
		Name:              "Nitrile gloves",
		IsConsumable:      true,
		IsQuantityTracked: true,
		TotalQuantity:     total,
		AvailableQuantity: available,
		Status:            models.StatusAvailable,
		CurrentLocationID: intPtr(10),
	}
}

func TestValidate_UnknownAction(t *testing.T) {
	_, err := Validate(discreteTool(), Request{Action: "TRANSMUTE"})

	require.Error(t, err)
	assert.Equal(t, KindInvalidAction, KindOf(err))
}

// ============================================
// OUT
// ============================================

func TestValidate_Out_ToLocation(t *testing.T) {
	delta, err := Validate(discreteTool(), Request{
		Action:      models.ActionOut,
		LocationID:  intPtr(20),
		PersonnelID: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, delta.Status)
	assert.Equal(t, intPtr(20), delta.LocationID)
	assert.Equal(t, intPtr(7), delta.HolderID)
	assert.Equal(t, 1, delta.Quantity, "quantity defaults to 1")
	assert.Zero(t, delta.AvailableDelta)
	assert.Zero(t, delta.TotalDelta)
}

func TestValidate_Out_ToCustomer(t *testing.T) {
	delta, err := Validate(discreteTool(), Request{
		Action:      models.ActionOut,
		CustomerID:  intPtr(5),
		PersonnelID: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, delta.Status)
	assert.Nil(t, delta.LocationID, "equipment at a customer site has no internal location")
	assert.Equal(t, intPtr(7), delta.HolderID)
}

func TestValidate_Out_Rejections(t *testing.T) {
	tests := []struct {
		name string
		eq   *models.Equipment
		req  Request
		kind ErrorKind
	}{
		{
			name: "consumable cannot be checked out",
			eq:   consumable(10, 10),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20), PersonnelID: intPtr(7)},
			kind: KindNotCheckoutable,
		},
		{
			name: "category forbids checkout",
			eq: func() *models.Equipment {
				eq := discreteTool()
				eq.IsCheckoutAllowed = false
				return eq
			}(),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20), PersonnelID: intPtr(7)},
			kind: KindCheckoutDisallowed,
		},
		{
			name: "missing personnel",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20)},
			kind: KindMissingActor,
		},
		{
			name: "neither location nor customer",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionOut, PersonnelID: intPtr(7)},
			kind: KindMissingActor,
		},
		{
			name: "both location and customer",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20), CustomerID: intPtr(5), PersonnelID: intPtr(7)},
			kind: KindMissingActor,
		},
		{
			name: "already checked out",
			eq: func() *models.Equipment {
				eq := discreteTool()
				eq.Status = models.StatusCheckedOut
				return eq
			}(),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20), PersonnelID: intPtr(7)},
			kind: KindNotAvailable,
		},
		{
			name: "in repair",
			eq: func() *models.Equipment {
				eq := discreteTool()
				eq.Status = models.StatusInRepair
				return eq
			}(),
			req:  Request{Action: models.ActionOut, LocationID: intPtr(20), PersonnelID: intPtr(7)},
			kind: KindNotAvailable,
		},
		{
			name: "quantity exceeds available",
			eq:   pooledTool(10, 3),
			req:  Request{Action: models.ActionOut, Quantity: 4, LocationID: intPtr(20), PersonnelID: intPtr(7)},
			kind: KindInsufficientQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := Validate(tt.eq, tt.req)

			require.Error(t, err)
			assert.Nil(t, delta)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestValidate_Out_QuantityTracked_PartialLeavesAvailable(t *testing.T) {
	delta, err := Validate(pooledTool(10, 8), Request{
		Action:      models.ActionOut,
		Quantity:    3,
		LocationID:  intPtr(20),
		PersonnelID: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, delta.Status, "pooled units stay available until the last one leaves")
	assert.Equal(t, -3, delta.AvailableDelta)
	assert.Zero(t, delta.TotalDelta)
}

func TestValidate_Out_QuantityTracked_LastUnitFlipsStatus(t *testing.T) {
	delta, err := Validate(pooledTool(10, 3), Request{
		Action:      models.ActionOut,
		Quantity:    3,
		LocationID:  intPtr(20),
		PersonnelID: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, delta.Status)
	assert.Equal(t, -3, delta.AvailableDelta)
}

func TestValidate_Out_InsufficientQuantityContext(t *testing.T) {
	_, err := Validate(pooledTool(10, 3), Request{
		Action:      models.ActionOut,
		Quantity:    4,
		LocationID:  intPtr(20),
		PersonnelID: intPtr(7),
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 4, ve.Requested)
	assert.Equal(t, 3, ve.Available)
	assert.Equal(t, "EXT-010", ve.AssetCode)
}

// ============================================
// IN
// ============================================

func TestValidate_In_Discrete(t *testing.T) {
	eq := discreteTool()
	eq.Status = models.StatusCheckedOut
	eq.CurrentHolderID = intPtr(7)

	delta, err := Validate(eq, Request{
		Action:     models.ActionIn,
		LocationID: intPtr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, delta.Status)
	assert.Equal(t, intPtr(10), delta.LocationID)
	assert.Nil(t, delta.HolderID, "check-in clears the holder")
	assert.Equal(t, 1, delta.Quantity)
}

func TestValidate_In_Rejections(t *testing.T) {
	tests := []struct {
		name string
		eq   *models.Equipment
		req  Request
		kind ErrorKind
	}{
		{
			name: "consumable cannot be checked in",
			eq:   consumable(10, 10),
			req:  Request{Action: models.ActionIn, LocationID: intPtr(10)},
			kind: KindNotReturnable,
		},
		{
			name: "missing return location",
			eq: func() *models.Equipment {
				eq := discreteTool()
				eq.Status = models.StatusCheckedOut
				return eq
			}(),
			req:  Request{Action: models.ActionIn},
			kind: KindMissingLocation,
		},
		{
			name: "not checked out",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionIn, LocationID: intPtr(10)},
			kind: KindNotCheckedOut,
		},
		{
			name: "over-return",
			eq:   pooledTool(10, 8),
			req:  Request{Action: models.ActionIn, Quantity: 3, LocationID: intPtr(10)},
			kind: KindOverReturn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.eq, tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestValidate_In_QuantityTracked_ExactOutstanding(t *testing.T) {
	delta, err := Validate(pooledTool(10, 8), Request{
		Action:     models.ActionIn,
		Quantity:   2,
		LocationID: intPtr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, delta.Status)
	assert.Equal(t, 2, delta.AvailableDelta)
}

// ============================================
// ISSUE / RESTOCK
// ============================================

func TestValidate_Issue(t *testing.T) {
	delta, err := Validate(consumable(20, 15), Request{
		Action:      models.ActionIssue,
		Quantity:    5,
		PersonnelID: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, -5, delta.AvailableDelta)
	assert.Equal(t, -5, delta.TotalDelta, "issued units are consumed, not outstanding")
	assert.Equal(t, models.StatusAvailable, delta.Status, "consumables have no status transition")
}

func TestValidate_Issue_Rejections(t *testing.T) {
	tests := []struct {
		name string
		eq   *models.Equipment
		req  Request
		kind ErrorKind
	}{
		{
			name: "not a consumable",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionIssue, Quantity: 1},
			kind: KindNotConsumable,
		},
		{
			name: "not consumable wins over zero quantity",
			eq:   discreteTool(),
			req:  Request{Action: models.ActionIssue, Quantity: 0},
			kind: KindNotConsumable,
		},
		{
			name: "zero quantity",
			eq:   consumable(20, 15),
			req:  Request{Action: models.ActionIssue, Quantity: 0},
			kind: KindInvalidQuantity,
		},
		{
			name: "negative quantity",
			eq:   consumable(20, 15),
			req:  Request{Action: models.ActionIssue, Quantity: -3},
			kind: KindInvalidQuantity,
		},
		{
			name: "insufficient quantity",
			eq:   consumable(20, 5),
			req:  Request{Action: models.ActionIssue, Quantity: 6},
			kind: KindInsufficientQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.eq, tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestValidate_Restock(t *testing.T) {
	delta, err := Validate(consumable(0, 0), Request{
		Action:   models.ActionRestock,
		Quantity: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, 20, delta.AvailableDelta)
	assert.Equal(t, 20, delta.TotalDelta)
}

func TestValidate_Restock_Rejections(t *testing.T) {
	_, err := Validate(discreteTool(), Request{Action: models.ActionRestock, Quantity: 5})
	assert.Equal(t, KindNotConsumable, KindOf(err))

	_, err = Validate(consumable(20, 15), Request{Action: models.ActionRestock, Quantity: 0})
	assert.Equal(t, KindInvalidQuantity, KindOf(err))
}

// ============================================
// Handover preconditions
// ============================================

func TestValidateHandover(t *testing.T) {
	checkedOut := discreteTool()
	checkedOut.Status = models.StatusCheckedOut
	assert.NoError(t, ValidateHandover(checkedOut))

	assert.Equal(t, KindNotApplicable, KindOf(ValidateHandover(consumable(10, 10))))
	assert.Equal(t, KindNotCheckedOut, KindOf(ValidateHandover(discreteTool())))
}

// ============================================
// Determinism
// ============================================

func TestValidate_Deterministic(t *testing.T) {
	req := Request{
		Action:      models.ActionOut,
		Quantity:    2,
		LocationID:  intPtr(20),
		PersonnelID: intPtr(7),
	}

	first, err1 := Validate(pooledTool(10, 5), req)
	second, err2 := Validate(pooledTool(10, 5), req)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}
