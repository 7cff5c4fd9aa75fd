package repository

import (
	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByProductID(productID uint) ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	// ReplaceSelections writes the order's total and selection rows in one
	// transaction; the engine result is the only source of either.
	ReplaceSelections(order *model.Order, selections []model.OrderSelection) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"product_id": order.ProductID,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"product_id": order.ProductID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("Selections", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_selections.part_id")
		}).
		Preload("Selections.Option").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByProductID(productID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Where("product_id = ?", productID).Order("id").Find(&orders).Error; err != nil {
		logger.Error("Failed to fetch orders", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	return r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) ReplaceSelections(order *model.Order, selections []model.OrderSelection) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderSelection{}).Error; err != nil {
			return err
		}
		for i := range selections {
			selections[i].OrderID = order.ID
		}
		if len(selections) > 0 {
			if err := tx.Create(&selections).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"total_price": order.TotalPrice,
				"status":      order.Status,
			}).Error
	})
}
