package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/internal/app/repository"
	"github.com/velocraft/velocraft-backend/internal/configurator"
	"github.com/velocraft/velocraft-backend/internal/websocket"
	"github.com/velocraft/velocraft-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// ConfigurationResponse is the API-facing shape of one session result plus
// the order it mirrors.
type ConfigurationResponse struct {
	OrderID          uint               `json:"order_id"`
	SessionToken     string             `json:"session_token"`
	ProductID        uint               `json:"product_id"`
	TotalPrice       decimal.Decimal    `json:"total_price"`
	AvailableOptions map[uint][]uint    `json:"available_options"`
	State            configurator.State `json:"state"`
	Selections       map[uint]uint      `json:"selections"`
}

// ConfiguratorService hosts configuration sessions: it owns the registry of
// in-flight sessions, serializes mutations per session, mirrors every result
// into the orders table and pushes it to websocket watchers. The engine
// itself stays pure; everything stateful-about-hosting lives here.
type ConfiguratorService interface {
	StartOrder(productID uint) (*ConfigurationResponse, error)
	AddOption(orderID, optionID uint) (*ConfigurationResponse, error)
	RemoveOption(orderID, partID uint) (*ConfigurationResponse, error)
	Finalize(orderID uint) (*ConfigurationResponse, error)
	Get(orderID uint) (*ConfigurationResponse, error)
	SessionToken(orderID uint) (string, error)
	SweepIdleSessions(maxIdle time.Duration) int
}

// liveSession pairs a session with the mutex that serializes its writers.
// The engine documents single-writer access instead of locking internally,
// so the hosting layer locks here.
type liveSession struct {
	mu         sync.Mutex
	session    *configurator.Session
	token      string
	productID  uint
	lastActive time.Time
}

type configuratorService struct {
	catalog   CatalogService
	orderRepo repository.OrderRepository
	hub       *websocket.Hub // nil disables push updates

	mu       sync.Mutex
	sessions map[uint]*liveSession
}

func NewConfiguratorService(
	catalog CatalogService,
	orderRepo repository.OrderRepository,
	hub *websocket.Hub,
) ConfiguratorService {
	return &configuratorService{
		catalog:   catalog,
		orderRepo: orderRepo,
		hub:       hub,
		sessions:  make(map[uint]*liveSession),
	}
}

func (s *configuratorService) StartOrder(productID uint) (*ConfigurationResponse, error) {
	snap, err := s.catalog.LoadSnapshot(productID)
	if err != nil {
		return nil, err
	}
	session, err := configurator.NewSession(snap)
	if err != nil {
		logger.Warn("Refusing to start unconfigurable product", map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	order := &model.Order{
		ProductID:    productID,
		SessionToken: uuid.NewString(),
		TotalPrice:   session.Current().TotalPrice,
		Status:       model.OrderStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	live := &liveSession{
		session:    session,
		token:      order.SessionToken,
		productID:  productID,
		lastActive: time.Now(),
	}
	s.mu.Lock()
	s.sessions[order.ID] = live
	s.mu.Unlock()

	logger.Info("Configuration session started", map[string]interface{}{
		"order_id":   order.ID,
		"product_id": productID,
	})
	return s.response(order.ID, live, session.Current()), nil
}

func (s *configuratorService) AddOption(orderID, optionID uint) (*ConfigurationResponse, error) {
	return s.mutate(orderID, func(session *configurator.Session) (configurator.Result, error) {
		return session.AddOption(optionID)
	})
}

func (s *configuratorService) RemoveOption(orderID, partID uint) (*ConfigurationResponse, error) {
	return s.mutate(orderID, func(session *configurator.Session) (configurator.Result, error) {
		return session.RemoveOption(partID)
	})
}

func (s *configuratorService) Finalize(orderID uint) (*ConfigurationResponse, error) {
	live, err := s.live(orderID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	result, err := live.session.Finalize()
	if err != nil {
		return nil, err
	}
	if err := s.persist(orderID, live, result); err != nil {
		return nil, err
	}
	live.lastActive = time.Now()

	// finalized sessions accept no further mutation; drop the live entry
	s.mu.Lock()
	delete(s.sessions, orderID)
	s.mu.Unlock()

	logger.Info("Order finalized", map[string]interface{}{
		"order_id":    orderID,
		"total_price": result.TotalPrice,
	})
	response := s.response(orderID, live, result)
	s.notify(orderID, response)
	return response, nil
}

func (s *configuratorService) Get(orderID uint) (*ConfigurationResponse, error) {
	live, err := s.live(orderID)
	if err == nil {
		live.mu.Lock()
		defer live.mu.Unlock()
		return s.response(orderID, live, live.session.Current()), nil
	}
	// a closed session means the order is finalized and lives only in the
	// database; anything else is a real failure
	if !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, configurator.ErrSessionClosed) {
		return nil, err
	}

	order, ferr := s.orderRepo.FindByID(orderID)
	if ferr != nil {
		if errors.Is(ferr, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, ferr
	}
	return finalizedResponse(order), nil
}

func (s *configuratorService) SessionToken(orderID uint) (string, error) {
	live, err := s.live(orderID)
	if err != nil {
		return "", err
	}
	return live.token, nil
}

// SweepIdleSessions drops live sessions untouched for longer than maxIdle
// and returns how many were dropped. Their pending order rows stay in the
// database, so a later request simply resumes them.
func (s *configuratorService) SweepIdleSessions(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for orderID, live := range s.sessions {
		if live.lastActive.Before(cutoff) {
			delete(s.sessions, orderID)
			swept++
		}
	}
	if swept > 0 {
		logger.Info("Swept idle configuration sessions", map[string]interface{}{
			"count": swept,
		})
	}
	return swept
}

type mutation func(*configurator.Session) (configurator.Result, error)

func (s *configuratorService) mutate(orderID uint, apply mutation) (*ConfigurationResponse, error) {
	live, err := s.live(orderID)
	if err != nil {
		return nil, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	result, err := apply(live.session)
	if err != nil {
		return nil, err
	}
	if err := s.persist(orderID, live, result); err != nil {
		return nil, err
	}
	live.lastActive = time.Now()

	response := s.response(orderID, live, result)
	s.notify(orderID, response)
	return response, nil
}

// live returns the in-memory session for an order, resuming it from the
// persisted selection when the registry entry was swept or the process
// restarted.
func (s *configuratorService) live(orderID uint) (*liveSession, error) {
	s.mu.Lock()
	if live, ok := s.sessions[orderID]; ok {
		s.mu.Unlock()
		return live, nil
	}
	s.mu.Unlock()

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status == model.OrderStatusFinalized {
		return nil, configurator.ErrSessionClosed
	}

	snap, err := s.catalog.LoadSnapshot(order.ProductID)
	if err != nil {
		return nil, err
	}
	session, err := configurator.NewSession(snap)
	if err != nil {
		return nil, err
	}
	for _, selection := range order.Selections {
		if _, err := session.AddOption(selection.OptionID); err != nil {
			// the catalog changed under the order (option gone or newly
			// conflicting); surface it rather than resuming a lie
			return nil, err
		}
	}

	live := &liveSession{
		session:    session,
		token:      order.SessionToken,
		productID:  order.ProductID,
		lastActive: time.Now(),
	}
	s.mu.Lock()
	if existing, ok := s.sessions[orderID]; ok {
		// another request resumed concurrently, keep the first
		live = existing
	} else {
		s.sessions[orderID] = live
	}
	s.mu.Unlock()

	logger.Info("Configuration session resumed", map[string]interface{}{
		"order_id":   orderID,
		"selections": len(order.Selections),
	})
	return live, nil
}

func (s *configuratorService) persist(orderID uint, live *liveSession, result configurator.Result) error {
	selection := live.session.Selection()
	selections := make([]model.OrderSelection, 0, len(selection))
	for partID, optionID := range selection {
		selections = append(selections, model.OrderSelection{
			OrderID:  orderID,
			PartID:   partID,
			OptionID: optionID,
		})
	}

	status := model.OrderStatusPending
	if result.State == configurator.StateFinalized {
		status = model.OrderStatusFinalized
	}
	order := &model.Order{ID: orderID, TotalPrice: result.TotalPrice, Status: status}
	if err := s.orderRepo.ReplaceSelections(order, selections); err != nil {
		logger.Error("Failed to persist configuration", err, map[string]interface{}{
			"order_id": orderID,
		})
		return err
	}
	return nil
}

func (s *configuratorService) response(orderID uint, live *liveSession, result configurator.Result) *ConfigurationResponse {
	return &ConfigurationResponse{
		OrderID:          orderID,
		SessionToken:     live.token,
		ProductID:        live.productID,
		TotalPrice:       result.TotalPrice,
		AvailableOptions: result.AvailableOptions,
		State:            result.State,
		Selections:       live.session.Selection(),
	}
}

func finalizedResponse(order *model.Order) *ConfigurationResponse {
	selections := make(map[uint]uint, len(order.Selections))
	for _, selection := range order.Selections {
		selections[selection.PartID] = selection.OptionID
	}
	return &ConfigurationResponse{
		OrderID:          order.ID,
		SessionToken:     order.SessionToken,
		ProductID:        order.ProductID,
		TotalPrice:       order.TotalPrice,
		AvailableOptions: map[uint][]uint{},
		State:            configurator.StateFinalized,
		Selections:       selections,
	}
}

func (s *configuratorService) notify(orderID uint, response *ConfigurationResponse) {
	if s.hub == nil {
		return
	}
	s.hub.NotifyOrder(orderID, response)
}
