package repository

import (
	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	"gorm.io/gorm"
)

// CatalogRepository loads the read-only configuration catalog: products,
// parts, options and both rule sets, always keyed by product id.
type CatalogRepository interface {
	FindAllProducts() ([]model.Product, error)
	FindProductByID(id uint) (*model.Product, error)
	FindPartsByProductID(productID uint) ([]model.Part, error)
	FindOptionsByProductID(productID uint) ([]model.Option, error)
	FindCompatibilityRulesByProductID(productID uint) ([]model.CompatibilityRule, error)
	FindPriceRulesByProductID(productID uint) ([]model.PriceRule, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FindAllProducts() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		logger.Error("Failed to fetch products", err)
		return nil, err
	}
	return products, nil
}

func (r *catalogRepository) FindProductByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Parts", func(db *gorm.DB) *gorm.DB {
		return db.Order("parts.id")
	}).Preload("Parts.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("options.id")
	}).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) FindPartsByProductID(productID uint) ([]model.Part, error) {
	var parts []model.Part
	if err := r.db.Where("product_id = ?", productID).Order("id").Find(&parts).Error; err != nil {
		logger.Error("Failed to fetch parts", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return parts, nil
}

func (r *catalogRepository) FindOptionsByProductID(productID uint) ([]model.Option, error) {
	var options []model.Option
	err := r.db.
		Joins("JOIN parts ON parts.id = options.part_id").
		Where("parts.product_id = ? AND parts.deleted_at IS NULL", productID).
		Order("options.id").
		Find(&options).Error
	if err != nil {
		logger.Error("Failed to fetch options", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return options, nil
}

func (r *catalogRepository) FindCompatibilityRulesByProductID(productID uint) ([]model.CompatibilityRule, error) {
	var rules []model.CompatibilityRule
	if err := r.db.Where("product_id = ?", productID).Order("id").Find(&rules).Error; err != nil {
		logger.Error("Failed to fetch compatibility rules", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rules, nil
}

func (r *catalogRepository) FindPriceRulesByProductID(productID uint) ([]model.PriceRule, error) {
	var rules []model.PriceRule
	err := r.db.Preload("Conditions").Where("product_id = ?", productID).Order("id").Find(&rules).Error
	if err != nil {
		logger.Error("Failed to fetch price rules", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return rules, nil
}
