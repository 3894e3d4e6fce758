package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"golang.org/x/sync/singleflight"
)

// カタログの参照と管理者の在庫更新
type ProductUsecase struct {
	categoryRepo repo.CategoryRepository
	productRepo  repo.ProductRepository
	tx           repo.TransactionManager
	cache        repo.CatalogCache
	log          *slog.Logger
	sfg          singleflight.Group // 同じキーのキャッシュミスをまとめる
}

// DI
func NewProductUsecase(
	categoryRepo repo.CategoryRepository,
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	cache repo.CatalogCache,
	log *slog.Logger,
) *ProductUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &ProductUsecase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		tx:           tx,
		cache:        cache,
		log:          log,
	}
}

type CategoryWithProducts struct {
	Category model.Category  `json:"category"`
	Products []model.Product `json:"products"`
}

type StockUpdateOutput struct {
	ProductID   int64 `json:"product_id"`
	StockBefore int64 `json:"stock_before"`
	StockAfter  int64 `json:"stock_after"`
}

const defaultAdjustReason = "manual adjustment"

// キャッシュ→DBの順に読む。キャッシュの失敗はログだけ出してDBに行く。
// 読込は同じキーの呼び出し元で共有するので、最初の呼び出し元のキャンセルを引き継がない。
// 各呼び出し元は自分のctxが切れた時点で抜ける。
func loadCached[T any](ctx context.Context, u *ProductUsecase, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	shared := context.WithoutCancel(ctx)

	ch := u.sfg.DoChan(key, func() (any, error) {
		var cached T
		err := u.cache.Get(shared, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repo.ErrCacheMiss) {
			u.log.Warn("catalog cache get failed", slog.String("key", key), slog.Any("err", err))
		}

		fresh, err := load(shared)
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(shared, key, fresh); err != nil {
			u.log.Warn("catalog cache set failed", slog.String("key", key), slog.Any("err", err))
		}
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// GET /category-list
func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	out, err := loadCached(ctx, u, "categories", u.categoryRepo.List)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// GET /category-list/:id
func (u *ProductUsecase) GetCategoryWithProducts(ctx context.Context, categoryID int64) (CategoryWithProducts, error) {
	if categoryID <= 0 {
		return CategoryWithProducts{}, NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	key := fmt.Sprintf("category:%d", categoryID)
	out, err := loadCached(ctx, u, key, func(ctx context.Context) (CategoryWithProducts, error) {
		c, err := u.categoryRepo.FindByID(ctx, categoryID)
		if err != nil {
			return CategoryWithProducts{}, err
		}
		products, err := u.productRepo.ListByCategoryID(ctx, categoryID)
		if err != nil {
			return CategoryWithProducts{}, err
		}
		return CategoryWithProducts{Category: c, Products: products}, nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return CategoryWithProducts{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return CategoryWithProducts{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// GET /product-list
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	out, err := loadCached(ctx, u, "products", u.productRepo.ListAll)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// GET /products/:id
func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	key := fmt.Sprintf("product:%d", productID)
	p, err := loadCached(ctx, u, key, func(ctx context.Context) (model.Product, error) {
		return u.productRepo.FindByID(ctx, productID)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// AdminUpdateStock は在庫の現在値を上書きして履歴を残す。
// 商品行をFOR UPDATEで取るので、同じ商品のチェックアウトとは直列になる。
func (u *ProductUsecase) AdminUpdateStock(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (StockUpdateOutput, error) {
	if adminUserID <= 0 {
		return StockUpdateOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return StockUpdateOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return StockUpdateOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultAdjustReason
	}
	if len(reason) > 255 {
		return StockUpdateOutput{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	var out StockUpdateOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		locked, err := r.Products().LockByIDs(ctx, []int64{productID})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		p, ok := locked[productID]
		if !ok {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//履歴（before/after）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			AdminUserID: adminUserID,
			StockBefore: p.Stock,
			StockAfter:  newStock,
			Reason:      reason,
			CreatedAt:   time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = StockUpdateOutput{ProductID: productID, StockBefore: p.Stock, StockAfter: newStock}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return StockUpdateOutput{}, err
		}
		return StockUpdateOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cache.InvalidateProducts(ctx); err != nil {
		u.log.Warn("product cache invalidate failed", slog.Int64("product_id", productID), slog.Any("err", err))
	}

	u.log.Info("stock updated",
		slog.Int64("admin_user_id", adminUserID),
		slog.Int64("product_id", productID),
		slog.Int64("stock_before", out.StockBefore),
		slog.Int64("stock_after", out.StockAfter),
	)
	return out, nil
}
