package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

type Order struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference string          `gorm:"type:uuid;uniqueIndex;not null" json:"reference"`
	UserID    int64           `gorm:"not null;index" json:"user_id"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
