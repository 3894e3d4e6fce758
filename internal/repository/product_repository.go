package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// id desc
	ListAll(ctx context.Context) ([]model.Product, error)
	ListByCategoryID(ctx context.Context, categoryID int64) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 行ロック（FOR UPDATE）を取って読む。ロックはid昇順で取る。
	// 見つからないidはmapに入らない。トランザクション内でだけ使う。
	LockByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	// 同名が無ければ作成（seed用）。作ったらtrue
	CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error)
}
