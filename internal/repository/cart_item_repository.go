package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// id asc
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 行ロックを取って読む（同じユーザーの二重チェックアウト対策）
	ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error)
	// 同一商品はプラス
	AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
}
