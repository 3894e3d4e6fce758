package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /add-to-cart, /cart の業務ロジック。
// カートはユーザーごとの明細（cart_items）だけで持つ。
type CartUsecase struct {
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// priceは今の商品価格（購入時の価格はチェックアウトで確定する）
type CartItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// 1明細あたりの数量上限
const MaxCartLineQty int64 = 999

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type DeletedCartItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 在庫はここでは見ない。チェックアウト時に判定する。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	if in.ProductID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	if in.Quantity < 1 {
		return NewHTTPError(http.StatusBadRequest, "qty must be >= 1")
	}
	if in.Quantity > MaxCartLineQty {
		return NewHTTPError(http.StatusBadRequest, "qty must be <= 999")
	}

	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//加算後も上限内か
	existing, err := u.cartItemRepo.FindByUserAndProduct(ctx, userID, in.ProductID)
	switch {
	case err == nil:
		if existing.Quantity+in.Quantity > MaxCartLineQty {
			return NewHTTPError(http.StatusBadRequest, "cart qty must be <= 999")
		}
	case !errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.AddQuantity(ctx, userID, in.ProductID, in.Quantity); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// GetCart はカートの中身と合計（今の価格で計算）
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}

	items, err := u.cartItemRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		row := CartItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: "Unknown",
			Price:       decimal.Zero,
			Quantity:    it.Quantity,
			Subtotal:    decimal.Zero,
		}
		if err == nil {
			row.ProductName = p.Name
			row.Price = p.Price
			row.Subtotal = p.Price.Mul(decimal.NewFromInt(it.Quantity))
		}
		out.Items = append(out.Items, row)
		out.Total = out.Total.Add(row.Subtotal)
	}
	return out, nil
}

// DeleteCartItem は商品IDでカートから1行消す
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID int64, productID int64) (DeletedCartItem, error) {
	if userID <= 0 {
		return DeletedCartItem{}, NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	if productID <= 0 {
		return DeletedCartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	item, err := u.cartItemRepo.FindByUserAndProduct(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return DeletedCartItem{}, NewHTTPError(http.StatusNotFound, "item not found in cart")
	}
	if err != nil {
		return DeletedCartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := DeletedCartItem{
		ProductID:   productID,
		ProductName: "Unknown",
		Quantity:    item.Quantity,
		Price:       decimal.Zero,
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == nil {
		out.ProductName = p.Name
		out.Price = p.Price
	} else if !errors.Is(err, repo.ErrNotFound) {
		return DeletedCartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, item.ID); err != nil {
		//同時にチェックアウトされた
		if errors.Is(err, repo.ErrNotFound) {
			return DeletedCartItem{}, NewHTTPError(http.StatusNotFound, "item not found in cart")
		}
		return DeletedCartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}
