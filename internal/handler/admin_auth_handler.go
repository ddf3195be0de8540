package handler

import (
	"net/http"

	"wholesale/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuthHandler struct {
	uc *usecase.AdminAuthUsecase
}

func NewAdminAuthHandler(uc *usecase.AdminAuthUsecase) *AdminAuthHandler {
	return &AdminAuthHandler{uc: uc}
}

func (h *AdminAuthHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/admin/login", h.login)
}

func (h *AdminAuthHandler) login(c echo.Context) error {
	var req usecase.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	out, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
