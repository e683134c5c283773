package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"equipment-service/internal/models"
	"equipment-service/internal/movement"
	"equipment-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EquipmentHandler maneja las consultas de solo lectura sobre el ledger
type EquipmentHandler struct {
	movementService services.MovementService
	logger          *zap.Logger
}

// NewEquipmentHandler crea una nueva instancia del handler
func NewEquipmentHandler(movementService services.MovementService, logger *zap.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		movementService: movementService,
		logger:          logger,
	}
}

// GetSnapshot maneja GET /equipment/:code
func (h *EquipmentHandler) GetSnapshot(c *gin.Context) {
	assetCode := c.Param("code")

	eq, err := h.movementService.GetEquipmentSnapshot(c.Request.Context(), assetCode)
	if err != nil {
		var ve *movement.ValidationError
		if errors.As(err, &ve) && ve.Kind == movement.KindEquipmentNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Message:   ve.Error(),
				Kind:      string(ve.Kind),
				AssetCode: assetCode,
			})
			return
		}
		h.logger.Error("Error getting equipment snapshot",
			zap.String("asset_code", assetCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "failed to get equipment",
		})
		return
	}

	c.JSON(http.StatusOK, eq)
}

// GetHistory maneja GET /equipment/:code/history
func (h *EquipmentHandler) GetHistory(c *gin.Context) {
	assetCode := c.Param("code")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	records, err := h.movementService.GetMovementHistory(c.Request.Context(), assetCode, limit)
	if err != nil {
		h.logger.Error("Error getting movement history",
			zap.String("asset_code", assetCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "failed to get movement history",
		})
		return
	}

	c.JSON(http.StatusOK, models.HistoryResponse{
		Success:   true,
		AssetCode: assetCode,
		Count:     len(records),
		Records:   records,
	})
}

// GetByLocation maneja GET /equipment/location/:id
func (h *EquipmentHandler) GetByLocation(c *gin.Context) {
	locationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid location id",
		})
		return
	}

	items, err := h.movementService.GetEquipmentByLocation(c.Request.Context(), locationID)
	if err != nil {
		h.logger.Error("Error listing equipment by location",
			zap.Int("location_id", locationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "failed to list equipment",
		})
		return
	}

	c.JSON(http.StatusOK, models.EquipmentListResponse{
		Success: true,
		Count:   len(items),
		Items:   items,
	})
}

// GetByHolder maneja GET /equipment/holder/:id
func (h *EquipmentHandler) GetByHolder(c *gin.Context) {
	personnelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "invalid personnel id",
		})
		return
	}

	items, err := h.movementService.GetEquipmentByHolder(c.Request.Context(), personnelID)
	if err != nil {
		h.logger.Error("Error listing equipment by holder",
			zap.Int("personnel_id", personnelID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "failed to list equipment",
		})
		return
	}

	c.JSON(http.StatusOK, models.EquipmentListResponse{
		Success: true,
		Count:   len(items),
		Items:   items,
	})
}

// GetLowStock maneja GET /equipment/low-stock
func (h *EquipmentHandler) GetLowStock(c *gin.Context) {
	items, err := h.movementService.GetLowStock(c.Request.Context())
	if err != nil {
		h.logger.Error("Error listing low stock consumables", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "failed to list low stock consumables",
		})
		return
	}

	c.JSON(http.StatusOK, models.EquipmentListResponse{
		Success: true,
		Count:   len(items),
		Items:   items,
	})
}
