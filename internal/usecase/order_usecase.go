package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文の参照（作成はCheckoutUsecase）
type OrderUsecase struct {
	orders  repo.OrderRepository
	details repo.OrderDetailRepository
}

func NewOrderUsecase(orders repo.OrderRepository, details repo.OrderDetailRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders, details: details}
}

type OrderSummary struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderDetailOutput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	OrderSummary
	Items []OrderDetailOutput `json:"items"`
}

// ListMyOrders は /tracking-order。新しい順
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderSummary, error) {
	if userID <= 0 {
		return []OrderSummary{}, NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderSummary(o))
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}

	details, err := u.details.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := OrderOutput{OrderSummary: toOrderSummary(o), Items: make([]OrderDetailOutput, 0, len(details))}
	for _, d := range details {
		out.Items = append(out.Items, OrderDetailOutput{
			ProductID:   d.ProductID,
			ProductName: d.ProductNameSnapshot,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Subtotal:    d.Subtotal(),
		})
	}
	return out, nil
}

func toOrderSummary(o model.Order) OrderSummary {
	return OrderSummary{
		ID:        o.ID,
		Reference: o.Reference,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}
