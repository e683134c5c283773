package handlers

import (
	"errors"
	"net/http"
	"time"

	"equipment-service/internal/models"
	"equipment-service/internal/movement"
	"equipment-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MovementHandler maneja las peticiones HTTP del subsistema de movimientos
type MovementHandler struct {
	movementService services.MovementService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewMovementHandler crea una nueva instancia del handler
func NewMovementHandler(movementService services.MovementService, logger *zap.Logger) *MovementHandler {
	return &MovementHandler{
		movementService: movementService,
		validator:       validator.New(),
		logger:          logger,
	}
}

// RecordMovement maneja POST /movements
func (h *MovementHandler) RecordMovement(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "record_movement"))

	var req models.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		logger.Error("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	req.ActorID = actorFromContext(c)

	result, err := h.movementService.RecordMovement(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.MovementResponse{
		Success:   true,
		Message:   "movement recorded",
		Record:    result.Record,
		Equipment: result.Equipment,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// RecordHandover maneja POST /movements/handover
func (h *MovementHandler) RecordHandover(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "record_handover"))

	var req models.HandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		logger.Error("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	req.ActorID = actorFromContext(c)

	equipment, err := h.movementService.RecordHandover(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.HandoverResponse{
		Success:   true,
		Message:   "handover recorded",
		Equipment: equipment,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// writeError mapea la taxonomía de errores a códigos HTTP. El core es
// agnóstico de transporte; este es el único lugar donde un kind se vuelve
// un status.
func (h *MovementHandler) writeError(c *gin.Context, err error) {
	var ve *movement.ValidationError
	if !errors.As(err, &ve) {
		// Fallo de infraestructura: rollback total ya ocurrió, seguro de
		// reintentar.
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Message: "transient failure, safe to retry",
		})
		return
	}

	c.JSON(statusForKind(ve.Kind), models.ErrorResponse{
		Message:   ve.Error(),
		Kind:      string(ve.Kind),
		AssetCode: ve.AssetCode,
		Requested: ve.Requested,
		Available: ve.Available,
	})
}

func statusForKind(kind movement.ErrorKind) int {
	switch kind {
	case movement.KindEquipmentNotFound:
		return http.StatusNotFound
	case movement.KindInvalidAction, movement.KindInvalidQuantity,
		movement.KindMissingActor, movement.KindMissingLocation:
		return http.StatusBadRequest
	default:
		// Conflictos de estado: la petición es válida pero el ledger no
		// está donde el caller cree.
		return http.StatusConflict
	}
}

// actorFromContext obtiene la identidad del actor autenticado.
// TODO: poblar "actor_id" desde el middleware de autenticación cuando el
// gateway propague la identidad.
func actorFromContext(c *gin.Context) int {
	if id, ok := c.Get("actor_id"); ok {
		if actorID, ok := id.(int); ok {
			return actorID
		}
	}
	return 0
}
