package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/internal/app/repository"
	"github.com/velocraft/velocraft-backend/internal/configurator"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	pkgredis "github.com/velocraft/velocraft-backend/pkg/redis"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogService builds validated, read-only catalog snapshots for the
// configurator. Snapshots are safe to share across sessions; the raw catalog
// payload is cached in Redis so concurrent sessions for the same product
// don't hammer the database.
type CatalogService interface {
	LoadSnapshot(productID uint) (*configurator.Snapshot, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	cacheTTL    time.Duration
}

func NewCatalogService(catalogRepo repository.CatalogRepository, cacheTTL time.Duration) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		cacheTTL:    cacheTTL,
	}
}

// catalogPayload is the serialized form of one product's catalog, the unit
// of caching.
type catalogPayload struct {
	Product     model.Product             `json:"product"`
	Parts       []model.Part              `json:"parts"`
	Options     []model.Option            `json:"options"`
	CompatRules []model.CompatibilityRule `json:"compat_rules"`
	PriceRules  []model.PriceRule         `json:"price_rules"`
}

func (s *catalogService) LoadSnapshot(productID uint) (*configurator.Snapshot, error) {
	payload, err := s.loadPayload(productID)
	if err != nil {
		return nil, err
	}

	snap, err := configurator.NewSnapshot(
		payload.Product,
		payload.Parts,
		payload.Options,
		payload.CompatRules,
		payload.PriceRules,
	)
	if err != nil {
		// a malformed rule aborts the whole load; silently skipping it
		// would change pricing or compatibility semantics
		logger.Error("Catalog failed validation", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return snap, nil
}

func (s *catalogService) loadPayload(productID uint) (*catalogPayload, error) {
	if cached := s.fromCache(productID); cached != nil {
		return cached, nil
	}

	product, err := s.catalogRepo.FindProductByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	parts, err := s.catalogRepo.FindPartsByProductID(productID)
	if err != nil {
		return nil, err
	}
	options, err := s.catalogRepo.FindOptionsByProductID(productID)
	if err != nil {
		return nil, err
	}
	compatRules, err := s.catalogRepo.FindCompatibilityRulesByProductID(productID)
	if err != nil {
		return nil, err
	}
	priceRules, err := s.catalogRepo.FindPriceRulesByProductID(productID)
	if err != nil {
		return nil, err
	}

	payload := &catalogPayload{
		Product:     *product,
		Parts:       parts,
		Options:     options,
		CompatRules: compatRules,
		PriceRules:  priceRules,
	}
	s.toCache(productID, payload)
	return payload, nil
}

func (s *catalogService) fromCache(productID uint) *catalogPayload {
	if pkgredis.GetClient() == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := pkgredis.GetCachedCatalog(ctx, productID)
	if err != nil || raw == nil {
		return nil
	}
	var payload catalogPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.Warn("Dropping unreadable cached catalog", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil
	}
	logger.Debug("Catalog cache hit", map[string]interface{}{
		"product_id": productID,
	})
	return &payload
}

func (s *catalogService) toCache(productID uint, payload *catalogPayload) {
	if pkgredis.GetClient() == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := pkgredis.CacheCatalog(ctx, productID, raw, s.cacheTTL); err != nil {
		logger.Warn("Failed to cache catalog", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}
}
