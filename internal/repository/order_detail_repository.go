package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderDetailRepository interface {
	CreateBulk(ctx context.Context, orderID int64, details []model.OrderDetail) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error)
}
