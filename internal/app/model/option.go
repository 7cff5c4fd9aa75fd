package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Option is one concrete choice for a part, with its own base price and
// stock status. Out-of-stock options never participate in a configuration.
type Option struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	PartID    uint            `gorm:"index;not null" json:"part_id"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	InStock   bool            `gorm:"default:true" json:"in_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Part Part `gorm:"foreignKey:PartID" json:"-"`
}

func (Option) TableName() string {
	return "options"
}
