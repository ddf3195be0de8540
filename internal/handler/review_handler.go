package handler

import (
	"net/http"

	"wholesale/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

func (h *ReviewHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products/:productId/reviews", h.list)
	api.POST("/products/:productId/reviews", h.create)
}

func (h *ReviewHandler) list(c echo.Context) error {
	out, err := h.uc.ListReviews(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) create(c echo.Context) error {
	var req usecase.CreateReviewInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	out, err := h.uc.CreateReview(c.Request().Context(), c.Param("productId"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
