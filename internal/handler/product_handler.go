package handler

import (
	"net/http"

	"wholesale/internal/domain/model"
	"wholesale/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AvailabilityResponse struct {
	Availability model.AvailabilityView `json:"availability"`
}

// /api/products の公開API（在庫）
type ProductHandler struct {
	ledger *usecase.InventoryLedger
	logger *zap.Logger
}

func NewProductHandler(ledger *usecase.InventoryLedger, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{ledger: ledger, logger: logger}
}

func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products/availability", h.availability)
}

func (h *ProductHandler) availability(c echo.Context) error {
	view, err := h.ledger.Availability(c.Request().Context())
	if err != nil {
		h.logger.Error("load availability failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to load inventory."})
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{Availability: view})
}
