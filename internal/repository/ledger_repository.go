package repository

import (
	"context"
	"database/sql"
	"fmt"

	"equipment-service/internal/models"
	"equipment-service/internal/movement"
)

// LedgerRepository define el acceso al ledger de equipos y a su historial.
//
// Reads run against the pool. All mutations go through InTransaction, which
// is the only place a ledger row can change: the executor locks the row,
// validates, appends the movement record and applies the delta, and either
// everything commits or nothing does.
type LedgerRepository interface {
	// Consultas
	GetByAssetCode(ctx context.Context, assetCode string) (*models.Equipment, error)
	ListByLocation(ctx context.Context, locationID int) ([]*models.Equipment, error)
	ListByHolder(ctx context.Context, personnelID int) ([]*models.Equipment, error)
	ListLowStock(ctx context.Context) ([]*models.Equipment, error)
	History(ctx context.Context, assetCode string, limit int) ([]*models.MovementRecord, error)

	// InTransaction corre fn dentro de una transacción; rollback total si
	// fn devuelve error o el commit falla.
	InTransaction(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx son las operaciones disponibles dentro de una transacción de
// movimiento.
type LedgerTx interface {
	// LockEquipment toma el lock exclusivo de la fila (SELECT ... FOR
	// UPDATE). Bloquea a cualquier otro movimiento sobre el mismo equipo
	// hasta el commit o rollback. Devuelve (nil, nil) si no existe.
	LockEquipment(ctx context.Context, assetCode string) (*models.Equipment, error)

	// InsertMovement agrega el registro inmutable de historial.
	InsertMovement(ctx context.Context, record *models.MovementRecord) error

	// ApplyDelta aplica el delta aprobado a la fila del ledger y devuelve
	// la fila refrescada.
	ApplyDelta(ctx context.Context, equipmentID int, action models.Action, delta *movement.Delta) (*models.Equipment, error)
}

const equipmentColumns = `id, asset_code, name, category_id, is_consumable, is_checkout_allowed,
	   is_serialized, serial_number, is_quantity_tracked, total_quantity,
	   available_quantity, min_quantity, status, current_location_id,
	   current_holder_id, last_action, last_action_at, created_at, updated_at`

const movementColumns = `id, equipment_id, asset_code, action, quantity, location_id, customer_id,
	   personnel_id, notes, photo_path, photo_name, photo_mime, created_by, created_at`

// ledgerRepository implementa LedgerRepository sobre PostgreSQL
type ledgerRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewLedgerRepository crea una nueva instancia del repository
func NewLedgerRepository(db *sql.DB) (LedgerRepository, error) {
	repo := &ledgerRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

// prepareStatements prepara las consultas de lectura para mejor rendimiento
func (r *ledgerRepository) prepareStatements() error {
	statements := map[string]string{
		"get_equipment": `
			SELECT ` + equipmentColumns + `
			FROM equipment
			WHERE asset_code = $1
		`,
		"list_by_location": `
			SELECT ` + equipmentColumns + `
			FROM equipment
			WHERE current_location_id = $1
			ORDER BY asset_code
		`,
		"list_by_holder": `
			SELECT ` + equipmentColumns + `
			FROM equipment
			WHERE current_holder_id = $1
			ORDER BY asset_code
		`,
		"list_low_stock": `
			SELECT ` + equipmentColumns + `
			FROM equipment
			WHERE is_consumable = true AND available_quantity <= min_quantity
			ORDER BY available_quantity ASC
		`,
		"history": `
			SELECT ` + movementColumns + `
			FROM equipment_movements
			WHERE asset_code = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`,
	}

	for name, query := range statements {
		stmt, err := r.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		r.stmts[name] = stmt
	}

	return nil
}

// GetByAssetCode obtiene la fila actual de un equipo
func (r *ledgerRepository) GetByAssetCode(ctx context.Context, assetCode string) (*models.Equipment, error) {
	eq, err := scanEquipment(r.stmts["get_equipment"].QueryRowContext(ctx, assetCode))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return eq, nil
}

// ListByLocation obtiene los equipos actualmente en una ubicación
func (r *ledgerRepository) ListByLocation(ctx context.Context, locationID int) ([]*models.Equipment, error) {
	return r.queryEquipment(ctx, "list_by_location", locationID)
}

// ListByHolder obtiene los equipos actualmente en custodia de una persona
func (r *ledgerRepository) ListByHolder(ctx context.Context, personnelID int) ([]*models.Equipment, error) {
	return r.queryEquipment(ctx, "list_by_holder", personnelID)
}

// ListLowStock obtiene consumibles con stock en o bajo el umbral de reorden
func (r *ledgerRepository) ListLowStock(ctx context.Context) ([]*models.Equipment, error) {
	return r.queryEquipment(ctx, "list_low_stock")
}

func (r *ledgerRepository) queryEquipment(ctx context.Context, stmt string, args ...interface{}) ([]*models.Equipment, error) {
	rows, err := r.stmts[stmt].QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", stmt, err)
	}
	defer rows.Close()

	var items []*models.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}

// History obtiene el historial de movimientos de un equipo, el más reciente
// primero
func (r *ledgerRepository) History(ctx context.Context, assetCode string, limit int) ([]*models.MovementRecord, error) {
	rows, err := r.stmts["history"].QueryContext(ctx, assetCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*models.MovementRecord
	for rows.Next() {
		rec, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InTransaction corre fn dentro de una transacción con rollback automático
func (r *ledgerRepository) InTransaction(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ledgerTx implementa LedgerTx sobre una transacción abierta
type ledgerTx struct {
	tx *sql.Tx
}

// LockEquipment toma el lock de fila del equipo
func (t *ledgerTx) LockEquipment(ctx context.Context, assetCode string) (*models.Equipment, error) {
	eq, err := scanEquipment(t.tx.QueryRowContext(ctx, `
		SELECT `+equipmentColumns+`
		FROM equipment
		WHERE asset_code = $1
		FOR UPDATE`, assetCode))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock equipment: %w", err)
	}
	return eq, nil
}

// InsertMovement inserta el registro de movimiento (append-only)
func (t *ledgerTx) InsertMovement(ctx context.Context, record *models.MovementRecord) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO equipment_movements
		(equipment_id, asset_code, action, quantity, location_id, customer_id,
		 personnel_id, notes, photo_path, photo_name, photo_mime, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		record.EquipmentID, record.AssetCode, record.Action, record.Quantity,
		record.LocationID, record.CustomerID, record.PersonnelID, record.Notes,
		record.PhotoPath, record.PhotoName, record.PhotoMime, record.CreatedBy,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

// ApplyDelta aplica el delta del validador a la fila del ledger
func (t *ledgerTx) ApplyDelta(ctx context.Context, equipmentID int, action models.Action, delta *movement.Delta) (*models.Equipment, error) {
	eq, err := scanEquipment(t.tx.QueryRowContext(ctx, `
		UPDATE equipment
		SET status = $1,
		    current_location_id = $2,
		    current_holder_id = $3,
		    available_quantity = available_quantity + $4,
		    total_quantity = total_quantity + $5,
		    last_action = $6,
		    last_action_at = NOW(),
		    updated_at = NOW()
		WHERE id = $7
		RETURNING `+equipmentColumns,
		delta.Status, delta.LocationID, delta.HolderID,
		delta.AvailableDelta, delta.TotalDelta, string(action), equipmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to apply ledger delta: %w", err)
	}
	return eq, nil
}

// scanner cubre *sql.Row y *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEquipment(s scanner) (*models.Equipment, error) {
	var eq models.Equipment
	err := s.Scan(
		&eq.ID, &eq.AssetCode, &eq.Name, &eq.CategoryID, &eq.IsConsumable,
		&eq.IsCheckoutAllowed, &eq.IsSerialized, &eq.SerialNumber,
		&eq.IsQuantityTracked, &eq.TotalQuantity, &eq.AvailableQuantity,
		&eq.MinQuantity, &eq.Status, &eq.CurrentLocationID, &eq.CurrentHolderID,
		&eq.LastAction, &eq.LastActionAt, &eq.CreatedAt, &eq.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func scanMovement(s scanner) (*models.MovementRecord, error) {
	var rec models.MovementRecord
	err := s.Scan(
		&rec.ID, &rec.EquipmentID, &rec.AssetCode, &rec.Action, &rec.Quantity,
		&rec.LocationID, &rec.CustomerID, &rec.PersonnelID, &rec.Notes,
		&rec.PhotoPath, &rec.PhotoName, &rec.PhotoMime, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
