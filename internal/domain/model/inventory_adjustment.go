package model

import "time"

// 管理者が在庫を直接書き換えたときの履歴。
// チェックアウトによる減算はOrderDetailが履歴になるのでここには残さない。
type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	AdminUserID int64     `gorm:"not null;index" json:"admin_user_id"`
	StockBefore int64     `gorm:"not null" json:"stock_before"`
	StockAfter  int64     `gorm:"not null" json:"stock_after"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (a InventoryAdjustment) Delta() int64 {
	return a.StockAfter - a.StockBefore
}
