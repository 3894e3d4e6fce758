package usecase

import (
	"errors"
	"fmt"
)

// チェックアウトの失敗の種類。CheckoutError.Kindに入る
var (
	ErrInvalidIdentity = errors.New("invalid user identity")
	ErrCartEmpty       = errors.New("cart empty")
	ErrAllOutOfStock   = errors.New("all out of stock")
	ErrProductNotFound = errors.New("product not found")
	ErrCheckoutFailed  = errors.New("checkout failed")
)

// 在庫不足の明細（レスポンスにそのまま載せる）
type InsufficientLine struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}

// チェックアウトの失敗結果。
// errors.IsはKindとCauseの両方に効く。
type CheckoutError struct {
	Kind         error
	Message      string
	ProductID    int64              // ErrProductNotFoundのとき
	Insufficient []InsufficientLine // ErrAllOutOfStockのとき
	Cause        error              // ErrCheckoutFailedのとき
}

func (e *CheckoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CheckoutError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	ok := errors.As(err, &ce)
	return ce, ok
}

func errInvalidIdentity() *CheckoutError {
	return &CheckoutError{Kind: ErrInvalidIdentity, Message: "invalid user identity"}
}

func errCartEmpty() *CheckoutError {
	return &CheckoutError{Kind: ErrCartEmpty, Message: "cart empty"}
}

func errAllOutOfStock(lines []InsufficientLine) *CheckoutError {
	return &CheckoutError{Kind: ErrAllOutOfStock, Message: "all items are out of stock", Insufficient: lines}
}

func errProductNotFound(productID int64) *CheckoutError {
	return &CheckoutError{
		Kind:      ErrProductNotFound,
		Message:   fmt.Sprintf("product not found: %d", productID),
		ProductID: productID,
	}
}

// 想定外の失敗。原因はCauseに残す（ログ用）
func errCheckoutFailed(cause error) *CheckoutError {
	return &CheckoutError{Kind: ErrCheckoutFailed, Message: "checkout failed", Cause: cause}
}
