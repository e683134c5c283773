package services

import (
	"context"
	"fmt"
	"strings"

	"equipment-service/internal/cache"
	"equipment-service/internal/models"
	"equipment-service/internal/movement"
	"equipment-service/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// MovementListener recibe cada movimiento confirmado, después del commit.
// Los listeners no pueden fallar un movimiento: el registro ya es durable.
type MovementListener interface {
	MovementRecorded(ctx context.Context, record *models.MovementRecord)
}

// MovementService define la interfaz del subsistema de movimientos
type MovementService interface {
	// Ejecutor: un movimiento validado, atómico
	RecordMovement(ctx context.Context, req *models.MovementRequest) (*models.MovementResult, error)

	// Coordinador: devolución + nueva salida como una sola operación
	RecordHandover(ctx context.Context, req *models.HandoverRequest) (*models.Equipment, error)

	// Consultas
	GetEquipmentSnapshot(ctx context.Context, assetCode string) (*models.Equipment, error)
	GetMovementHistory(ctx context.Context, assetCode string, limit int) ([]*models.MovementRecord, error)
	GetEquipmentByLocation(ctx context.Context, locationID int) ([]*models.Equipment, error)
	GetEquipmentByHolder(ctx context.Context, personnelID int) ([]*models.Equipment, error)
	GetLowStock(ctx context.Context) ([]*models.Equipment, error)
}

// movementService implementa MovementService
type movementService struct {
	repo      repository.LedgerRepository
	cache     *cache.EquipmentCache
	listeners []MovementListener
	logger    *zap.Logger
}

// NewMovementService crea una nueva instancia del servicio. Los listeners
// (publisher de Kafka, feed websocket, métricas) son opcionales.
func NewMovementService(repo repository.LedgerRepository, snapshotCache *cache.EquipmentCache, logger *zap.Logger, listeners ...MovementListener) MovementService {
	return &movementService{
		repo:      repo,
		cache:     snapshotCache,
		listeners: listeners,
		logger:    logger,
	}
}

// RecordMovement aplica un movimiento de forma atómica.
//
// Todo ocurre dentro de una transacción: lock exclusivo de la fila del
// equipo (a lo sumo un movimiento en vuelo por equipo), validación contra
// el snapshot ya lockeado, insert del registro inmutable y delta sobre el
// ledger. Un rechazo de validación hace rollback sin escribir nada y se
// devuelve con su kind específico; un fallo de infraestructura también hace
// rollback y es seguro de reintentar.
func (s *movementService) RecordMovement(ctx context.Context, req *models.MovementRequest) (*models.MovementResult, error) {
	logger := s.logger.With(
		zap.String("operation", "record_movement"),
		zap.String("asset_code", req.AssetCode),
		zap.String("action", string(req.Action)),
		zap.Int("quantity", req.Quantity),
	)

	var result models.MovementResult
	err := s.repo.InTransaction(ctx, func(tx repository.LedgerTx) error {
		eq, err := tx.LockEquipment(ctx, req.AssetCode)
		if err != nil {
			return fmt.Errorf("locking equipment: %w", err)
		}
		if eq == nil {
			return movement.NewNotFound(req.AssetCode)
		}

		delta, err := movement.Validate(eq, movement.Request{
			Action:      req.Action,
			Quantity:    req.Quantity,
			LocationID:  req.LocationID,
			CustomerID:  req.CustomerID,
			PersonnelID: req.PersonnelID,
		})
		if err != nil {
			return err
		}

		record := buildRecord(eq, req, delta.Quantity)
		if err := tx.InsertMovement(ctx, record); err != nil {
			return err
		}

		updated, err := tx.ApplyDelta(ctx, eq.ID, req.Action, delta)
		if err != nil {
			return err
		}

		result = models.MovementResult{Record: record, Equipment: updated}
		return nil
	})

	if err != nil {
		if movement.IsValidation(err) {
			s.notifyRejected(req.AssetCode, movement.KindOf(err))
			logger.Warn("Movement rejected",
				zap.String("kind", string(movement.KindOf(err))),
				zap.Error(err))
			return nil, err
		}
		logger.Error("Movement failed", zap.Error(err))
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	s.afterCommit(ctx, result.Record)

	logger.Info("Movement recorded",
		zap.Int("record_id", result.Record.ID),
		zap.String("status", string(result.Equipment.Status)),
		zap.Int("available_quantity", result.Equipment.AvailableQuantity))

	return &result, nil
}

// RecordHandover trata "devolver de A, reentregar a B" como una sola
// operación de negocio: un lock de fila sostenido sobre ambas mitades, dos
// registros de historial (IN y luego OUT) y ningún estado intermedio
// observable. Si cualquiera de las mitades es inválida, se revierte todo.
func (s *movementService) RecordHandover(ctx context.Context, req *models.HandoverRequest) (*models.Equipment, error) {
	logger := s.logger.With(
		zap.String("operation", "record_handover"),
		zap.String("asset_code", req.AssetCode),
		zap.Int("return_location_id", req.ReturnLocationID),
	)

	var final *models.Equipment
	var records []*models.MovementRecord

	err := s.repo.InTransaction(ctx, func(tx repository.LedgerTx) error {
		eq, err := tx.LockEquipment(ctx, req.AssetCode)
		if err != nil {
			return fmt.Errorf("locking equipment: %w", err)
		}
		if eq == nil {
			return movement.NewNotFound(req.AssetCode)
		}

		if err := movement.ValidateHandover(eq); err != nil {
			return err
		}

		// Mitad 1: devolución a la ubicación de retorno.
		returnLocation := req.ReturnLocationID
		inDelta, err := movement.Validate(eq, movement.Request{
			Action:     models.ActionIn,
			LocationID: &returnLocation,
		})
		if err != nil {
			return err
		}

		inRecord := buildRecord(eq, &models.MovementRequest{
			AssetCode:  req.AssetCode,
			Action:     models.ActionIn,
			LocationID: &returnLocation,
			Notes:      deriveNote("handover return", req.Notes),
			ActorID:    req.ActorID,
		}, inDelta.Quantity)
		if err := tx.InsertMovement(ctx, inRecord); err != nil {
			return err
		}

		mid, err := tx.ApplyDelta(ctx, eq.ID, models.ActionIn, inDelta)
		if err != nil {
			return err
		}

		// Mitad 2: nueva salida al nuevo holder/ubicación, validada contra
		// el estado que dejó la mitad 1.
		outDelta, err := movement.Validate(mid, movement.Request{
			Action:      models.ActionOut,
			LocationID:  req.NewLocationID,
			PersonnelID: req.NewPersonnelID,
		})
		if err != nil {
			return err
		}

		outRecord := buildRecord(mid, &models.MovementRequest{
			AssetCode:   req.AssetCode,
			Action:      models.ActionOut,
			LocationID:  req.NewLocationID,
			PersonnelID: req.NewPersonnelID,
			Notes:       deriveNote("handover reissue", req.Notes),
			ActorID:     req.ActorID,
		}, outDelta.Quantity)
		if err := tx.InsertMovement(ctx, outRecord); err != nil {
			return err
		}

		final, err = tx.ApplyDelta(ctx, mid.ID, models.ActionOut, outDelta)
		if err != nil {
			return err
		}

		records = []*models.MovementRecord{inRecord, outRecord}
		return nil
	})

	if err != nil {
		if movement.IsValidation(err) {
			s.notifyRejected(req.AssetCode, movement.KindOf(err))
			logger.Warn("Handover rejected",
				zap.String("kind", string(movement.KindOf(err))),
				zap.Error(err))
			return nil, err
		}
		logger.Error("Handover failed", zap.Error(err))
		return nil, fmt.Errorf("recording handover: %w", err)
	}

	for _, record := range records {
		s.afterCommit(ctx, record)
	}
	s.notifyHandover()

	logger.Info("Handover recorded",
		zap.Intp("new_holder_id", final.CurrentHolderID),
		zap.Intp("new_location_id", final.CurrentLocationID))

	return final, nil
}

// GetEquipmentSnapshot obtiene el estado actual de un equipo, con cache
func (s *movementService) GetEquipmentSnapshot(ctx context.Context, assetCode string) (*models.Equipment, error) {
	if eq, ok := s.cache.Get(ctx, assetCode); ok {
		return eq, nil
	}

	eq, err := s.repo.GetByAssetCode(ctx, assetCode)
	if err != nil {
		return nil, fmt.Errorf("getting equipment snapshot: %w", err)
	}
	if eq == nil {
		return nil, movement.NewNotFound(assetCode)
	}

	if err := s.cache.Set(ctx, assetCode, eq); err != nil {
		s.logger.Debug("Failed to cache equipment snapshot",
			zap.String("asset_code", assetCode), zap.Error(err))
	}
	return eq, nil
}

// GetMovementHistory obtiene el historial de un equipo, el más reciente
// primero
func (s *movementService) GetMovementHistory(ctx context.Context, assetCode string, limit int) ([]*models.MovementRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.History(ctx, assetCode, limit)
}

// GetEquipmentByLocation obtiene los equipos en una ubicación
func (s *movementService) GetEquipmentByLocation(ctx context.Context, locationID int) ([]*models.Equipment, error) {
	return s.repo.ListByLocation(ctx, locationID)
}

// GetEquipmentByHolder obtiene los equipos en custodia de una persona
func (s *movementService) GetEquipmentByHolder(ctx context.Context, personnelID int) ([]*models.Equipment, error) {
	return s.repo.ListByHolder(ctx, personnelID)
}

// GetLowStock obtiene consumibles en o bajo su umbral de reorden
func (s *movementService) GetLowStock(ctx context.Context) ([]*models.Equipment, error) {
	return s.repo.ListLowStock(ctx)
}

// afterCommit invalida el cache y notifica a los listeners. Corre solo
// después de un commit exitoso.
func (s *movementService) afterCommit(ctx context.Context, record *models.MovementRecord) {
	if err := s.cache.Invalidate(ctx, record.AssetCode); err != nil {
		s.logger.Warn("Failed to invalidate snapshot cache",
			zap.String("asset_code", record.AssetCode), zap.Error(err))
	}
	for _, l := range s.listeners {
		l.MovementRecorded(ctx, record)
	}
}

// notifyRejected avisa a los listeners que además cuenten rechazos
func (s *movementService) notifyRejected(assetCode string, kind movement.ErrorKind) {
	for _, l := range s.listeners {
		if rl, ok := l.(interface {
			MovementRejected(string, movement.ErrorKind)
		}); ok {
			rl.MovementRejected(assetCode, kind)
		}
	}
}

// notifyHandover avisa a los listeners que cuentan traspasos completos
func (s *movementService) notifyHandover() {
	for _, l := range s.listeners {
		if hl, ok := l.(interface{ HandoverRecorded() }); ok {
			hl.HandoverRecorded()
		}
	}
}

// buildRecord arma el registro inmutable para un request ya validado
func buildRecord(eq *models.Equipment, req *models.MovementRequest, quantity int) *models.MovementRecord {
	record := &models.MovementRecord{
		EquipmentID: eq.ID,
		AssetCode:   eq.AssetCode,
		Action:      req.Action,
		Quantity:    quantity,
		LocationID:  req.LocationID,
		CustomerID:  req.CustomerID,
		PersonnelID: req.PersonnelID,
		Notes:       req.Notes,
	}
	if req.Photo != nil {
		record.PhotoPath = &req.Photo.Path
		record.PhotoName = &req.Photo.Filename
		if req.Photo.MimeType != "" {
			record.PhotoMime = &req.Photo.MimeType
		}
	}
	if req.ActorID > 0 {
		actor := req.ActorID
		record.CreatedBy = &actor
	}
	return record
}

// deriveNote combina la nota derivada del traspaso con la del usuario
func deriveNote(prefix, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return prefix
	}
	return prefix + ": " + notes
}
