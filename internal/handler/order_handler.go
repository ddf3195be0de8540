package handler

import (
	"net/http"

	"wholesale/internal/domain/model"
	"wholesale/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OfflineOrderRequest struct {
	Items         []model.OrderLine `json:"items"`
	Customer      model.Customer    `json:"customer"`
	PaymentMethod string            `json:"paymentMethod"`
}

type OfflineOrderResponse struct {
	OrderID string `json:"orderId"`
}

// 代引き・送金の注文受付
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/orders/offline", h.placeOffline)
}

func (h *OrderHandler) placeOffline(c echo.Context) error {
	var req OfflineOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	id, err := h.uc.PlaceOfflineOrder(c.Request().Context(), usecase.PlaceOfflineOrderInput{
		Items:         req.Items,
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, OfflineOrderResponse{OrderID: id})
}
