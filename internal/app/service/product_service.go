package service

import (
	"errors"

	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/internal/app/repository"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(productID uint) (*model.Product, error)
}

type productService struct {
	catalogRepo repository.CatalogRepository
}

func NewProductService(catalogRepo repository.CatalogRepository) ProductService {
	return &productService{catalogRepo: catalogRepo}
}

func (s *productService) ListProducts() ([]model.Product, error) {
	products, err := s.catalogRepo.FindAllProducts()
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product with its parts and options preloaded, the
// shape the configuration UI renders part pickers from.
func (s *productService) GetProduct(productID uint) (*model.Product, error) {
	product, err := s.catalogRepo.FindProductByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return product, nil
}
