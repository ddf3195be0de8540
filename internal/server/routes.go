package server

import (
	"wholesale/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Product    *handler.ProductHandler
	Review     *handler.ReviewHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	AdminAuth  *handler.AdminAuthHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, adminGuard echo.MiddlewareFunc) {
	api := e.Group("/api")

	h.Product.RegisterRoutes(api)
	h.Review.RegisterRoutes(api)
	h.Order.RegisterRoutes(api)
	h.AdminAuth.RegisterRoutes(api)

	//管理者のみ
	h.AdminOrder.RegisterRoutes(api, adminGuard)
}
