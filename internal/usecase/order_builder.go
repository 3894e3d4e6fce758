package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BuiltOrder struct {
	ID         int64
	Reference  string
	ItemsCount int
}

// buildOrder は注文ヘッダ→明細の順に作る（明細はorder_idが要る）。
// 単価と商品名は行に入っているスナップショットをコピーする。
// 呼び出し側でlinesが空でないことを確認しておくこと。
func buildOrder(ctx context.Context, r repo.TxRepos, userID int64, lines []FulfillableLine, total decimal.Decimal) (BuiltOrder, error) {
	if len(lines) == 0 {
		return BuiltOrder{}, errors.New("build order: no fulfillable lines")
	}

	now := time.Now()
	ref := uuid.NewString()
	orderID, err := r.Orders().Create(ctx, model.Order{
		Reference: ref,
		UserID:    userID,
		Total:     total,
		Status:    model.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return BuiltOrder{}, fmt.Errorf("create order: %w", err)
	}

	details := make([]model.OrderDetail, 0, len(lines))
	for _, l := range lines {
		details = append(details, model.OrderDetail{
			ProductID:           l.ProductID,
			ProductNameSnapshot: l.ProductName,
			Quantity:            l.Quantity,
			UnitPrice:           l.UnitPrice,
			CreatedAt:           now,
		})
	}
	if err := r.OrderDetails().CreateBulk(ctx, orderID, details); err != nil {
		return BuiltOrder{}, fmt.Errorf("create order details: %w", err)
	}

	return BuiltOrder{ID: orderID, Reference: ref, ItemsCount: len(details)}, nil
}
