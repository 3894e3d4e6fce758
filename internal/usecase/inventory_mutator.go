package usecase

import (
	"context"
	"fmt"

	repo "storefront/internal/repository"
)

// mutateInventory は行ごとに「在庫減算」と「カート行削除」をセットで行う。
// どちらかが失敗したらerrorを返し、Tx全体をrollbackさせる。
func mutateInventory(ctx context.Context, r repo.TxRepos, lines []FulfillableLine) error {
	for _, l := range lines {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
		if err != nil {
			return fmt.Errorf("decrease stock product=%d: %w", l.ProductID, err)
		}
		//ロック済みなのでここに来るのは想定外
		if !ok {
			return fmt.Errorf("decrease stock product=%d: stock changed during checkout", l.ProductID)
		}

		if err := r.CartItems().DeleteByID(ctx, l.CartItemID); err != nil {
			return fmt.Errorf("delete cart item id=%d: %w", l.CartItemID, err)
		}
	}
	return nil
}
