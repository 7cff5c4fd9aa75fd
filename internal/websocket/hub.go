package websocket

import (
	"encoding/json"
	"sync"

	"github.com/velocraft/velocraft-backend/pkg/logger"
)

// Client is one websocket subscriber watching a configuration order.
type Client struct {
	Hub     *Hub
	Conn    *Conn
	OrderID uint
	Send    chan []byte
}

// Hub fans configuration results out to every client watching an order. A
// client subscribes to exactly one order; multiple tabs on the same order
// each get their own client.
type Hub struct {
	orders     map[uint][]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *orderUpdate

	mu sync.RWMutex
}

type orderUpdate struct {
	orderID uint
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		orders:     make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *orderUpdate, 1024),
	}
}

// Run processes registrations and broadcasts. Call once, in its own
// goroutine, before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.orders[client.OrderID] = append(h.orders[client.OrderID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"order_id": client.OrderID,
				"watchers": len(h.orders[client.OrderID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if watchers, ok := h.orders[client.OrderID]; ok {
				remaining := make([]*Client, 0, len(watchers))
				for _, c := range watchers {
					if c != client {
						remaining = append(remaining, c)
					}
				}
				if len(remaining) == 0 {
					delete(h.orders, client.OrderID)
				} else {
					h.orders[client.OrderID] = remaining
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"order_id": client.OrderID,
			})

		case update := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.orders[update.orderID] {
				select {
				case client.Send <- update.payload:
				default:
					// send buffer full - drop the client asynchronously
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"order_id": update.orderID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register subscribes a client to its order's updates.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyOrder pushes a payload to every client watching the order. Marshal
// errors are logged and dropped; a push is best-effort, the REST response
// already carries the same result.
func (h *Hub) NotifyOrder(orderID uint, payload interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal order update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return
	}
	h.broadcast <- &orderUpdate{orderID: orderID, payload: message}
}
