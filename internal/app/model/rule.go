package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RulePolarity string

const (
	PolarityInclude RulePolarity = "include" // subject chosen => object must be chosen
	PolarityExclude RulePolarity = "exclude" // subject chosen => object must not be chosen
)

// CompatibilityRule is a directional constraint between two options of the
// same product. Rules are one-way: a rule from A to B says nothing about
// selections that start from B.
type CompatibilityRule struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ProductID       uint           `gorm:"index;not null" json:"product_id"`
	SubjectOptionID uint           `gorm:"not null" json:"subject_option_id"`
	ObjectOptionID  uint           `gorm:"not null" json:"object_option_id"`
	Polarity        RulePolarity   `gorm:"type:varchar(10);not null;default:'include'" json:"polarity"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	SubjectOption Option `gorm:"foreignKey:SubjectOptionID" json:"-"`
	ObjectOption  Option `gorm:"foreignKey:ObjectOptionID" json:"-"`
}

func (CompatibilityRule) TableName() string {
	return "compatibility_rules"
}

// PriceRule adjusts the total price when every option in its condition set is
// jointly selected. Two forms exist: product-scoped rules (OptionID nil) add
// Amount to the total; option-scoped rules replace the target option's base
// price with Amount while the conditions hold.
type PriceRule struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	OptionID  *uint           `gorm:"index" json:"option_id,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Conditions []PriceRuleCondition `gorm:"foreignKey:PriceRuleID;constraint:OnDelete:CASCADE" json:"conditions,omitempty"`
}

func (PriceRule) TableName() string {
	return "price_rules"
}

type PriceRuleCondition struct {
	ID          uint `gorm:"primarykey" json:"id"`
	PriceRuleID uint `gorm:"index;not null" json:"price_rule_id"`
	OptionID    uint `gorm:"not null" json:"option_id"`

	// Relationships
	PriceRule PriceRule `gorm:"foreignKey:PriceRuleID" json:"-"`
	Option    Option    `gorm:"foreignKey:OptionID" json:"-"`
}

func (PriceRuleCondition) TableName() string {
	return "price_rule_conditions"
}
