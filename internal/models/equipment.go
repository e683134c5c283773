package models

import (
	"time"
)

// EquipmentStatus is the ledger status of an equipment row. Only Available
// and CheckedOut participate in movement rules; other statuses are managed
// outside this service and movements against them are rejected.
type EquipmentStatus string

const (
	StatusAvailable  EquipmentStatus = "available"
	StatusCheckedOut EquipmentStatus = "checked_out"
	StatusInRepair   EquipmentStatus = "in_repair"
	StatusRetired    EquipmentStatus = "retired"
)

// Equipment representa la tabla equipment (ledger row)
//
// The row is the authoritative current state of one asset. It is mutated
// only by the movement executor; movement records are the history that
// caused each transition.
type Equipment struct {
	ID                int             `json:"id" db:"id"`
	AssetCode         string          `json:"asset_code" db:"asset_code"`
	Name              string          `json:"name" db:"name"`
	CategoryID        int             `json:"category_id" db:"category_id"`
	IsConsumable      bool            `json:"is_consumable" db:"is_consumable"`
	IsCheckoutAllowed bool            `json:"is_checkout_allowed" db:"is_checkout_allowed"`
	IsSerialized      bool            `json:"is_serialized" db:"is_serialized"`
	SerialNumber      *string         `json:"serial_number,omitempty" db:"serial_number"`
	IsQuantityTracked bool            `json:"is_quantity_tracked" db:"is_quantity_tracked"`
	TotalQuantity     int             `json:"total_quantity" db:"total_quantity"`
	AvailableQuantity int             `json:"available_quantity" db:"available_quantity"`
	MinQuantity       int             `json:"min_quantity" db:"min_quantity"`
	Status            EquipmentStatus `json:"status" db:"status"`
	CurrentLocationID *int            `json:"current_location_id,omitempty" db:"current_location_id"`
	CurrentHolderID   *int            `json:"current_holder_id,omitempty" db:"current_holder_id"`
	LastAction        *string         `json:"last_action,omitempty" db:"last_action"`
	LastActionAt      *time.Time      `json:"last_action_at,omitempty" db:"last_action_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the equipment row. The validator works on
// immutable snapshots, so callers that hand a row to concurrent code copy
// it first.
func (e *Equipment) Clone() *Equipment {
	if e == nil {
		return nil
	}
	clone := *e
	clone.SerialNumber = clonePtr(e.SerialNumber)
	clone.CurrentLocationID = clonePtr(e.CurrentLocationID)
	clone.CurrentHolderID = clonePtr(e.CurrentHolderID)
	clone.LastAction = clonePtr(e.LastAction)
	clone.LastActionAt = clonePtr(e.LastActionAt)
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
