package models

// ===== REQUEST DTOs =====

// PhotoMeta metadata opaca de una foto adjunta a un movimiento
//
// Stored verbatim on the movement record; the service never opens the file.
type PhotoMeta struct {
	Path     string `json:"path" validate:"required"`
	Filename string `json:"filename" validate:"required"`
	MimeType string `json:"mime_type"`
}

// MovementRequest DTO para registrar un movimiento
//
// Quantity defaults to 1 for OUT/IN when omitted. Location, customer and
// personnel requirements depend on the action and are enforced by the
// movement validator, not by struct tags, so rejections carry the precise
// error kind.
type MovementRequest struct {
	AssetCode   string     `json:"asset_code" validate:"required"`
	Action      Action     `json:"action" validate:"required"`
	Quantity    int        `json:"quantity" validate:"gte=0"`
	LocationID  *int       `json:"location_id,omitempty"`
	CustomerID  *int       `json:"customer_id,omitempty"`
	PersonnelID *int       `json:"personnel_id,omitempty"`
	Notes       string     `json:"notes"`
	Photo       *PhotoMeta `json:"photo,omitempty"`
	ActorID     int        `json:"-"` // set from the authentication context
}

// HandoverRequest DTO para un traspaso atómico (devolución + nueva salida)
//
// NewPersonnelID is deliberately not tagged required: a missing holder must
// reach the coordinator and come back as a MissingActor rejection with zero
// records written, not as a bind failure after the first half ran.
type HandoverRequest struct {
	AssetCode        string `json:"asset_code" validate:"required"`
	ReturnLocationID int    `json:"return_location_id" validate:"required,gt=0"`
	NewPersonnelID   *int   `json:"new_personnel_id,omitempty"`
	NewLocationID    *int   `json:"new_location_id,omitempty"`
	Notes            string `json:"notes"`
	ActorID          int    `json:"-"`
}

// ===== RESPONSE DTOs =====

// MovementResponse respuesta para un movimiento registrado
type MovementResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Record    *MovementRecord `json:"record"`
	Equipment *Equipment      `json:"equipment"`
	Timestamp string          `json:"timestamp"`
}

// HandoverResponse respuesta para un traspaso
type HandoverResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Equipment *Equipment `json:"equipment"`
	Timestamp string     `json:"timestamp"`
}

// HistoryResponse respuesta para el historial de un equipo
type HistoryResponse struct {
	Success   bool              `json:"success"`
	AssetCode string            `json:"asset_code"`
	Count     int               `json:"count"`
	Records   []*MovementRecord `json:"records"`
}

// EquipmentListResponse respuesta para listados de equipos
type EquipmentListResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Items   []*Equipment `json:"items"`
}

// ErrorResponse respuesta de error uniforme
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Kind      string `json:"kind,omitempty"`
	AssetCode string `json:"asset_code,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}
