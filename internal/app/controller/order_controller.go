package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/velocraft/velocraft-backend/internal/app/service"
	"github.com/velocraft/velocraft-backend/internal/configurator"
	apperrors "github.com/velocraft/velocraft-backend/internal/errors"
	"github.com/velocraft/velocraft-backend/internal/middleware"
	"github.com/velocraft/velocraft-backend/internal/websocket"
	"github.com/velocraft/velocraft-backend/pkg/logger"
)

type OrderController struct {
	configuratorService service.ConfiguratorService
	hub                 *websocket.Hub
}

func NewOrderController(configuratorService service.ConfiguratorService, hub *websocket.Hub) *OrderController {
	return &OrderController{
		configuratorService: configuratorService,
		hub:                 hub,
	}
}

type CreateOrderRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type AddOptionRequest struct {
	OptionID uint `json:"option_id" binding:"required"`
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// token auth happens before the upgrade, origins are not filtered here
	CheckOrigin: func(r *http.Request) bool { return true },
}

// CreateOrder starts a configuration session for a product
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required")
		return
	}

	configuration, err := ctrl.configuratorService.StartOrder(req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
			return
		}
		ctrl.respondConfiguratorError(c, err)
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id":   configuration.OrderID,
		"product_id": configuration.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"order": configuration,
	})
}

// GetOrder returns the current configuration state of an order
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := ctrl.orderID(c)
	if !ok {
		return
	}

	configuration, err := ctrl.configuratorService.Get(orderID)
	if err != nil {
		ctrl.respondConfiguratorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": configuration,
	})
}

// AddOption selects an option on the order, replacing any prior choice for
// the option's part
// POST /api/v1/orders/:id/options
func (ctrl *OrderController) AddOption(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := ctrl.orderID(c)
	if !ok {
		return
	}

	var req AddOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid selection request", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "option_id is required")
		return
	}

	configuration, err := ctrl.configuratorService.AddOption(orderID, req.OptionID)
	if err != nil {
		ctrl.respondConfiguratorError(c, err)
		return
	}

	log.Info("Option added to order", map[string]interface{}{
		"order_id":  orderID,
		"option_id": req.OptionID,
		"state":     configuration.State,
	})

	c.JSON(http.StatusOK, gin.H{
		"order": configuration,
	})
}

// RemoveOption clears the selection for one part
// DELETE /api/v1/orders/:id/options/:part_id
func (ctrl *OrderController) RemoveOption(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := ctrl.orderID(c)
	if !ok {
		return
	}

	partStr := c.Param("part_id")
	partID, err := strconv.ParseUint(partStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid part ID")
		return
	}

	configuration, err := ctrl.configuratorService.RemoveOption(orderID, uint(partID))
	if err != nil {
		ctrl.respondConfiguratorError(c, err)
		return
	}

	log.Info("Option removed from order", map[string]interface{}{
		"order_id": orderID,
		"part_id":  partID,
		"state":    configuration.State,
	})

	c.JSON(http.StatusOK, gin.H{
		"order": configuration,
	})
}

// FinalizeOrder closes the session and marks the order finalized
// POST /api/v1/orders/:id/finalize
func (ctrl *OrderController) FinalizeOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := ctrl.orderID(c)
	if !ok {
		return
	}

	configuration, err := ctrl.configuratorService.Finalize(orderID)
	if err != nil {
		ctrl.respondConfiguratorError(c, err)
		return
	}

	log.Info("Order finalized", map[string]interface{}{
		"order_id":    orderID,
		"total_price": configuration.TotalPrice,
	})

	c.JSON(http.StatusOK, gin.H{
		"order": configuration,
	})
}

// StreamOrder upgrades to a websocket that receives the order's
// configuration result after every change
// GET /api/v1/ws/orders/:id?token=<session_token>
func (ctrl *OrderController) StreamOrder(c *gin.Context) {
	orderID, ok := ctrl.orderID(c)
	if !ok {
		return
	}

	token, err := ctrl.configuratorService.SessionToken(orderID)
	if err != nil {
		ctrl.respondConfiguratorError(c, err)
		return
	}
	if c.Query("token") != token {
		apperrors.Forbidden(c, apperrors.OrderInvalidToken, "Session token mismatch")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"order_id": orderID,
		})
		return
	}

	client := &websocket.Client{
		Hub:     ctrl.hub,
		Conn:    &websocket.Conn{Conn: conn},
		OrderID: orderID,
		Send:    make(chan []byte, 256),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (ctrl *OrderController) orderID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return 0, false
	}
	return uint(id), true
}

// respondConfiguratorError maps engine and service errors onto the standard
// error body. Rule validation failures are a catalog defect, not a client
// mistake, so they surface as 500.
func (ctrl *OrderController) respondConfiguratorError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	var incompatible *configurator.IncompatibleSelectionError
	var invalidRule *configurator.InvalidRuleError

	switch {
	case errors.As(err, &incompatible):
		message := fmt.Sprintf("Option %d is incompatible with the current selection", incompatible.OptionID)
		if incompatible.ConflictsWith != 0 {
			message = fmt.Sprintf("Option %d conflicts with selected option %d", incompatible.OptionID, incompatible.ConflictsWith)
		}
		apperrors.Conflict(c, apperrors.ConfigIncompatibleSelection, message)

	case errors.Is(err, configurator.ErrOutOfStock):
		apperrors.Conflict(c, apperrors.ConfigOutOfStock, "Option is out of stock")

	case errors.Is(err, configurator.ErrUnknownOption):
		apperrors.BadRequest(c, apperrors.ConfigUnknownOption, "Option does not belong to the product")

	case errors.Is(err, configurator.ErrUnknownPart):
		apperrors.BadRequest(c, apperrors.ConfigUnknownPart, "Part does not belong to the product")

	case errors.Is(err, configurator.ErrNotFullyConfigured):
		apperrors.Conflict(c, apperrors.ConfigNotFullyConfigured, "All required parts must be selected before finalizing")

	case errors.Is(err, configurator.ErrSessionClosed):
		apperrors.Conflict(c, apperrors.ConfigSessionClosed, "Order is already finalized")

	case errors.Is(err, configurator.ErrProductNotConfigurable):
		apperrors.Conflict(c, apperrors.ConfigProductNotConfigurable, "Product has no valid configuration")

	case errors.As(err, &invalidRule):
		log.Error("Catalog rule validation failed", err, map[string]interface{}{
			"rule_id": invalidRule.RuleID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ConfigInvalidRule, "Product catalog is misconfigured")

	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")

	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")

	default:
		log.Error("Configurator request failed", err, nil)
		apperrors.InternalError(c, "")
	}
}
