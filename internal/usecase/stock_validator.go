package usecase

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カートの1行（商品と数量）
type CartLine struct {
	CartItemID int64
	ProductID  int64
	Quantity   int64
}

// 在庫が足りる行。単価と商品名はロック中のスナップショットから取る
type FulfillableLine struct {
	CartItemID  int64
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

func (l FulfillableLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

type StockCheck struct {
	Fulfillable  []FulfillableLine
	Insufficient []InsufficientLine
	Total        decimal.Decimal
}

// ValidateStock はカートの各行を在庫スナップショットと突き合わせて
// 足りる行と足りない行に分ける。副作用なし。
//
// スナップショットに無い商品が1つでもあれば、そこで全体を失敗にする（部分スキップしない）。
// 行の順番は入力の順番のまま。
func ValidateStock(lines []CartLine, snapshot map[int64]model.Product) (StockCheck, error) {
	out := StockCheck{
		Fulfillable:  make([]FulfillableLine, 0, len(lines)),
		Insufficient: []InsufficientLine{},
		Total:        decimal.Zero,
	}

	for _, l := range lines {
		p, ok := snapshot[l.ProductID]
		if !ok {
			return StockCheck{}, errProductNotFound(l.ProductID)
		}

		if l.Quantity > p.Stock {
			out.Insufficient = append(out.Insufficient, InsufficientLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   l.Quantity,
				Available:   p.Stock,
			})
			continue
		}

		fl := FulfillableLine{
			CartItemID:  l.CartItemID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
		}
		out.Fulfillable = append(out.Fulfillable, fl)
		out.Total = out.Total.Add(fl.Subtotal())
	}

	return out, nil
}

func productIDsOf(lines []CartLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

func cartLinesOf(items []model.CartItem) []CartLine {
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, CartLine{
			CartItemID: it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}
	return lines
}
