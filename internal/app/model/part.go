package model

import (
	"time"

	"gorm.io/gorm"
)

// Part is a configurable slot on a product (e.g. Frame) whose options are
// mutually exclusive. A required part must carry a selection before an order
// can be finalized.
type Part struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"index;not null" json:"product_id"`
	Name      string         `gorm:"not null" json:"name"`
	Required  bool           `gorm:"default:true" json:"required"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product Product  `gorm:"foreignKey:ProductID" json:"-"`
	Options []Option `gorm:"foreignKey:PartID" json:"options,omitempty"`
}

func (Part) TableName() string {
	return "parts"
}
