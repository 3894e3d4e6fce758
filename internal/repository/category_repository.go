package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	// id desc
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// 同名があればそれを返し、無ければ作る
	EnsureByName(ctx context.Context, name string) (model.Category, error)
}
