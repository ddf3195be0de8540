package handler

import (
	"net/http"
	"strconv"

	"wholesale/internal/domain/model"
	"wholesale/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

type OrderListResponse struct {
	Orders []model.Order `json:"orders"`
}

type OrderResponse struct {
	Order model.Order `json:"order"`
}

type AdminOrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// guardは管理者トークンの検証
func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, guard echo.MiddlewareFunc) {
	api.GET("/orders", h.list, guard)
	api.PATCH("/orders/:orderId/status", h.updateStatus, guard)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "Invalid limit.")
		}
		limit = l
	}

	orders, err := h.uc.ListOrders(c.Request().Context(), usecase.ListOrdersInput{
		Status:        c.QueryParam("status"),
		PaymentMethod: c.QueryParam("paymentMethod"),
		Limit:         limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderListResponse{Orders: orders})
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	order, err := h.uc.UpdateOrderStatus(c.Request().Context(), c.Param("orderId"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: order})
}
