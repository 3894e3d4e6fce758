package repository

import (
	"context"
	"sort"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

var _ repo.ProductRepository = (*ProductGormRepository)(nil)

// 全商品（新しい順）
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id desc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// カテゴリ内の商品（新しい順）
func (r *ProductGormRepository) ListByCategoryID(ctx context.Context, categoryID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id desc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// SELECT ... WHERE id IN (...) ORDER BY id FOR UPDATE
// 同じ商品を含むチェックアウト同士は、先にロックした方がcommit/rollbackするまで待つ。
func (r *ProductGormRepository) LockByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var products []model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// 同名の商品が無ければ作成
func (r *ProductGormRepository) CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error) {
	var existing model.Product
	err := r.db.WithContext(ctx).Where("name = ?", p.Name).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return model.Product{}, false, err
	}

	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, false, translateError(err)
	}
	return p, true, nil
}
