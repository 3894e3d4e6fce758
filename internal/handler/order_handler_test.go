package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCheckouter struct {
	mock.Mock
}

func (m *MockCheckouter) Checkout(ctx context.Context, userID int64) (usecase.CheckoutResult, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(usecase.CheckoutResult)
	return out, args.Error(1)
}

// AuthJWTの代わりにuser_idだけ入れる
func withUser(userID int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserIDKey, userID)
			return next(c)
		}
	}
}

func postCheckout(t *testing.T, co Checkouter) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewOrderHandler(co, nil).RegisterRoutes(e, withUser(5))

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostCheckout_Success(t *testing.T) {
	co := new(MockCheckouter)
	co.On("Checkout", mock.Anything, int64(5)).Return(usecase.CheckoutResult{
		OrderID:    11,
		Reference:  "3f1c2a8e-0000-4000-8000-000000000000",
		Total:      decimal.RequireFromString("897"),
		ItemsCount: 2,
		SkippedItems: []usecase.InsufficientLine{
			{ProductID: 3, ProductName: "Samsung T7 Shield SSD", Requested: 5, Available: 1},
		},
	}, nil)

	rec := postCheckout(t, co)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message      string                     `json:"message"`
		OrderID      int64                      `json:"order_id"`
		Reference    string                     `json:"reference"`
		Total        decimal.Decimal            `json:"total"`
		ItemsCount   int                        `json:"items_count"`
		SkippedItems []usecase.InsufficientLine `json:"skipped_items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "checkout successful", body.Message)
	assert.Equal(t, int64(11), body.OrderID)
	assert.True(t, decimal.RequireFromString("897").Equal(body.Total))
	assert.Equal(t, 2, body.ItemsCount)
	require.Len(t, body.SkippedItems, 1)
	assert.Equal(t, int64(3), body.SkippedItems[0].ProductID)
	co.AssertExpectations(t)
}

func TestPostCheckout_ErrorMapping(t *testing.T) {
	short := []usecase.InsufficientLine{{ProductID: 2, ProductName: "DJI Mini 3", Requested: 2, Available: 1}}

	tests := []struct {
		name          string
		err           error
		wantCode      int
		wantError     string
		wantProductID int64
		wantItems     int
	}{
		{
			name:      "invalid identity",
			err:       &usecase.CheckoutError{Kind: usecase.ErrInvalidIdentity, Message: "invalid user identity"},
			wantCode:  http.StatusUnauthorized,
			wantError: "invalid user identity",
		},
		{
			name:      "cart empty",
			err:       &usecase.CheckoutError{Kind: usecase.ErrCartEmpty, Message: "cart empty"},
			wantCode:  http.StatusBadRequest,
			wantError: "cart empty",
		},
		{
			name:      "all out of stock",
			err:       &usecase.CheckoutError{Kind: usecase.ErrAllOutOfStock, Message: "all items are out of stock", Insufficient: short},
			wantCode:  http.StatusBadRequest,
			wantError: "all items are out of stock",
			wantItems: 1,
		},
		{
			name:          "product not found",
			err:           &usecase.CheckoutError{Kind: usecase.ErrProductNotFound, Message: "product not found: 9", ProductID: 9},
			wantCode:      http.StatusNotFound,
			wantError:     "product not found: 9",
			wantProductID: 9,
		},
		{
			name:      "checkout failed hides cause",
			err:       &usecase.CheckoutError{Kind: usecase.ErrCheckoutFailed, Message: "checkout failed", Cause: errors.New("pq: deadlock detected")},
			wantCode:  http.StatusInternalServerError,
			wantError: "checkout failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			co := new(MockCheckouter)
			co.On("Checkout", mock.Anything, int64(5)).Return(usecase.CheckoutResult{}, tt.err)

			rec := postCheckout(t, co)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body CheckoutErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantProductID, body.ProductID)
			assert.Len(t, body.InsufficientItems, tt.wantItems)
		})
	}
}

func TestPostCheckout_NoUser(t *testing.T) {
	co := new(MockCheckouter)
	e := echo.New()
	NewOrderHandler(co, nil).RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	co.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
}

// 500の本文にrequest_idが付き、同じidで原因がログに出る
func TestPostCheckout_FailedCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	co := new(MockCheckouter)
	co.On("Checkout", mock.Anything, int64(5)).Return(usecase.CheckoutResult{}, &usecase.CheckoutError{
		Kind:    usecase.ErrCheckoutFailed,
		Message: "checkout failed",
		Cause:   errors.New("pq: deadlock detected"),
	})

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	NewOrderHandler(co, nil).RegisterRoutes(e, withUser(5))

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-7f3a")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadlock")
	var body CheckoutErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "checkout failed", body.Error)
	assert.Equal(t, "request_id: req-7f3a", body.Message)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-7f3a", line["request_id"])
	assert.Equal(t, "pq: deadlock detected", line["err"])
}
