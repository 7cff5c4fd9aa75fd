package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFinalized OrderStatus = "finalized"
)

// Order is the persisted mirror of a configuration session. TotalPrice is
// only ever written from a pricing engine result, never mutated directly.
type Order struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	SessionToken string          `gorm:"type:varchar(36);uniqueIndex" json:"session_token"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	Status       OrderStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Product    Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Selections []OrderSelection `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"selections,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderSelection records one chosen option per part. At most one row exists
// per (order, part).
type OrderSelection struct {
	ID       uint `gorm:"primarykey" json:"id"`
	OrderID  uint `gorm:"not null;index" json:"order_id"`
	PartID   uint `gorm:"not null" json:"part_id"`
	OptionID uint `gorm:"not null" json:"option_id"`

	// Relationships
	Order  Order  `gorm:"foreignKey:OrderID" json:"-"`
	Part   Part   `gorm:"foreignKey:PartID" json:"-"`
	Option Option `gorm:"foreignKey:OptionID" json:"option,omitempty"`
}

func (OrderSelection) TableName() string {
	return "order_selections"
}
