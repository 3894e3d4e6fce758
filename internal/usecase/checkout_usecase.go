package usecase

import (
	"context"
	"log/slog"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// commit後に商品一覧のキャッシュを捨てる
type ProductCacheInvalidator interface {
	InvalidateProducts(ctx context.Context) error
}

type CheckoutUsecase struct {
	tx          repo.TransactionManager
	cartItems   repo.CartItemRepository
	invalidator ProductCacheInvalidator
	log         *slog.Logger
}

// DI
// invalidatorはnilでもよい（キャッシュ無し構成）
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartItems repo.CartItemRepository,
	invalidator ProductCacheInvalidator,
	log *slog.Logger,
) *CheckoutUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutUsecase{tx: tx, cartItems: cartItems, invalidator: invalidator, log: log}
}

type CheckoutResult struct {
	OrderID      int64              `json:"order_id"`
	Reference    string             `json:"reference"`
	Total        decimal.Decimal    `json:"total"`
	ItemsCount   int                `json:"items_count"`
	SkippedItems []InsufficientLine `json:"skipped_items"`
}

// Checkout はカートを注文に変える。
//
//	カート読込 → (空なら cart empty)
//	→ 在庫チェック → (全部不足なら all out of stock)
//	→ 注文作成 → 在庫減算+カート削除 → commit
//
// 在庫が足りない行はスキップしてカートに残す（部分チェックアウト）。
// 返すerrorは常に*CheckoutError。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64) (CheckoutResult, error) {
	if userID <= 0 {
		return CheckoutResult{}, u.fail(userID, errInvalidIdentity())
	}

	//Txを開く前に空カートを弾く
	items, err := u.cartItems.ListByUserID(ctx, userID)
	if err != nil {
		return CheckoutResult{}, u.fail(userID, errCheckoutFailed(err))
	}
	if len(items) == 0 {
		return CheckoutResult{}, u.fail(userID, errCartEmpty())
	}

	var out CheckoutResult

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//Tx内で読み直す（読込〜commitの間に他リクエストが消した行は見えない）
		locked, err := r.CartItems().ListByUserIDForUpdate(ctx, userID)
		if err != nil {
			return errCheckoutFailed(err)
		}
		if len(locked) == 0 {
			return errCartEmpty()
		}
		lines := cartLinesOf(locked)

		//商品行をFOR UPDATEで押さえてから判定する
		snapshot, err := r.Products().LockByIDs(ctx, productIDsOf(lines))
		if err != nil {
			return errCheckoutFailed(err)
		}

		check, err := ValidateStock(lines, snapshot)
		if err != nil {
			return err
		}
		if len(check.Fulfillable) == 0 {
			return errAllOutOfStock(check.Insufficient)
		}

		built, err := buildOrder(ctx, r, userID, check.Fulfillable, check.Total)
		if err != nil {
			return errCheckoutFailed(err)
		}

		if err := mutateInventory(ctx, r, check.Fulfillable); err != nil {
			return errCheckoutFailed(err)
		}

		out = CheckoutResult{
			OrderID:      built.ID,
			Reference:    built.Reference,
			Total:        check.Total,
			ItemsCount:   built.ItemsCount,
			SkippedItems: check.Insufficient,
		}
		return nil
	})
	if err != nil {
		ce, ok := AsCheckoutError(err)
		if !ok {
			//commit失敗など
			ce = errCheckoutFailed(err)
		}
		return CheckoutResult{}, u.fail(userID, ce)
	}

	if u.invalidator != nil {
		if err := u.invalidator.InvalidateProducts(ctx); err != nil {
			u.log.Warn("product cache invalidate failed", slog.Int64("user_id", userID), slog.Any("err", err))
		}
	}

	u.log.Info("checkout completed",
		slog.Int64("user_id", userID),
		slog.Int64("order_id", out.OrderID),
		slog.String("reference", out.Reference),
		slog.String("total", out.Total.StringFixed(2)),
		slog.Int("items_count", out.ItemsCount),
		slog.Int("skipped_count", len(out.SkippedItems)),
	)
	return out, nil
}

// 失敗の種類ごとに1行ログを出す
func (u *CheckoutUsecase) fail(userID int64, ce *CheckoutError) *CheckoutError {
	attrs := []any{
		slog.Int64("user_id", userID),
		slog.String("kind", ce.Kind.Error()),
	}
	switch {
	case ce.ProductID != 0:
		attrs = append(attrs, slog.Int64("product_id", ce.ProductID))
	case len(ce.Insufficient) > 0:
		attrs = append(attrs, slog.Int("insufficient_count", len(ce.Insufficient)))
	}

	if ce.Cause != nil {
		attrs = append(attrs, slog.Any("err", ce.Cause))
		u.log.Error("checkout failed", attrs...)
		return ce
	}
	u.log.Info("checkout rejected", attrs...)
	return ce
}
