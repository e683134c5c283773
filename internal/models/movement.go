package models

import (
	"time"
)

// Action is the kind of movement requested against an equipment row.
type Action string

const (
	ActionOut     Action = "OUT"     // check-out to a location/customer under a holder
	ActionIn      Action = "IN"      // check-in back to a store location
	ActionIssue   Action = "ISSUE"   // issue consumable units
	ActionRestock Action = "RESTOCK" // restock consumable units
)

// MovementRecord representa la tabla equipment_movements
//
// Records are append-only facts: created once by the executor inside the
// same transaction that mutates the ledger row, never updated or deleted.
type MovementRecord struct {
	ID          int       `json:"id" db:"id"`
	EquipmentID int       `json:"equipment_id" db:"equipment_id"`
	AssetCode   string    `json:"asset_code" db:"asset_code"`
	Action      Action    `json:"action" db:"action"`
	Quantity    int       `json:"quantity" db:"quantity"`
	LocationID  *int      `json:"location_id,omitempty" db:"location_id"`
	CustomerID  *int      `json:"customer_id,omitempty" db:"customer_id"`
	PersonnelID *int      `json:"personnel_id,omitempty" db:"personnel_id"`
	Notes       string    `json:"notes" db:"notes"`
	PhotoPath   *string   `json:"photo_path,omitempty" db:"photo_path"`
	PhotoName   *string   `json:"photo_name,omitempty" db:"photo_name"`
	PhotoMime   *string   `json:"photo_mime,omitempty" db:"photo_mime"`
	CreatedBy   *int      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// MovementFilter filtros para consultas de historial de movimientos
type MovementFilter struct {
	AssetCode   *string    `json:"asset_code,omitempty"`
	Action      *Action    `json:"action,omitempty"`
	LocationID  *int       `json:"location_id,omitempty"`
	PersonnelID *int       `json:"personnel_id,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}

// MovementResult is what the executor returns for one committed movement.
type MovementResult struct {
	Record    *MovementRecord `json:"record"`
	Equipment *Equipment      `json:"equipment"`
}
