package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Checkouter interface {
	Checkout(ctx context.Context, userID int64) (usecase.CheckoutResult, error)
}

// /checkout, /tracking-order, /orders/:id
type OrderHandler struct {
	checkout Checkouter
	orders   *usecase.OrderUsecase
}

// DI
func NewOrderHandler(checkout Checkouter, orders *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type CheckoutResponse struct {
	Message string `json:"message"`
	usecase.CheckoutResult
}

// チェックアウト失敗の本文。種類に応じて追加の項目が付く
type CheckoutErrorResponse struct {
	Error             string                     `json:"error"`
	ProductID         int64                      `json:"product_id,omitempty"`
	InsufficientItems []usecase.InsufficientLine `json:"insufficient_items,omitempty"`
	Message           string                     `json:"message,omitempty"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authn ...echo.MiddlewareFunc) {
	e.POST("/checkout", h.postCheckout, authn...)
	e.GET("/tracking-order", h.trackingOrder, authn...)
	e.GET("/orders/:id", h.detail, authn...)
}

func (h *OrderHandler) postCheckout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	out, err := h.checkout.Checkout(c.Request().Context(), userID)
	if err != nil {
		return writeCheckoutError(c, err)
	}

	return c.JSON(http.StatusOK, CheckoutResponse{
		Message:        "checkout successful",
		CheckoutResult: out,
	})
}

func writeCheckoutError(c echo.Context, err error) error {
	ce, ok := usecase.AsCheckoutError(err)
	if !ok {
		return writeError(c, err)
	}

	switch {
	case errors.Is(ce.Kind, usecase.ErrInvalidIdentity):
		return c.JSON(http.StatusUnauthorized, CheckoutErrorResponse{Error: ce.Message})
	case errors.Is(ce.Kind, usecase.ErrCartEmpty):
		return c.JSON(http.StatusBadRequest, CheckoutErrorResponse{Error: ce.Message})
	case errors.Is(ce.Kind, usecase.ErrAllOutOfStock):
		return c.JSON(http.StatusBadRequest, CheckoutErrorResponse{
			Error:             ce.Message,
			InsufficientItems: ce.Insufficient,
		})
	case errors.Is(ce.Kind, usecase.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, CheckoutErrorResponse{
			Error:     ce.Message,
			ProductID: ce.ProductID,
		})
	default:
		//原因は本文に載せない。request_idでログと突き合わせる
		middleware.LoggerFrom(c).Error("checkout request failed", slog.Any("err", ce.Cause))
		body := CheckoutErrorResponse{Error: ce.Message}
		if rid := middleware.RequestIDFrom(c); rid != "" {
			body.Message = "request_id: " + rid
		}
		return c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *OrderHandler) trackingOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	out, err := h.orders.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid user identity"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.orders.GetMyOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
