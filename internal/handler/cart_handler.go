package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /add-to-cart, /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// qtyは省略したら1
type AddCartRequest struct {
	ProductID *int64 `json:"product_id"`
	Qty       *int64 `json:"qty"`
}

type DeleteCartItemResponse struct {
	Message     string                  `json:"message"`
	DeletedItem usecase.DeletedCartItem `json:"deleted_item"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, authn ...echo.MiddlewareFunc) {
	e.POST("/add-to-cart", h.addToCart, authn...)

	g := e.Group("/cart", authn...)
	g.GET("", h.getCart)
	g.DELETE("/:product_id", h.deleteItem)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product_id and qty must be numbers"})
	}
	if req.ProductID == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product_id required"})
	}
	qty := int64(1)
	if req.Qty != nil {
		qty = *req.Qty
	}

	if err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: *req.ProductID,
		Quantity:  qty,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "added to cart"})
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	out, err := h.uc.DeleteCartItem(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, DeleteCartItemResponse{
		Message:     "item removed from cart",
		DeletedItem: out,
	})
}
