package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderDetailGormRepository struct {
	db *gorm.DB
}

func NewOrderDetailGormRepository(db *gorm.DB) *OrderDetailGormRepository {
	return &OrderDetailGormRepository{db: db}
}

var _ repo.OrderDetailRepository = (*OrderDetailGormRepository)(nil)

func (r *OrderDetailGormRepository) CreateBulk(ctx context.Context, orderID int64, details []model.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	rows := make([]model.OrderDetail, len(details))
	copy(rows, details)
	for i := range rows {
		rows[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *OrderDetailGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	var items []model.OrderDetail
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderDetail{}, err
	}
	return items, nil
}
