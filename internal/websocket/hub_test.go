package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredClient(t *testing.T, hub *Hub, orderID uint) *Client {
	t.Helper()
	client := &Client{Hub: hub, OrderID: orderID, Send: make(chan []byte, 4)}
	hub.Register(client)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		for _, c := range hub.orders[orderID] {
			if c == client {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	return client
}

func TestHub_NotifyOrder(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registeredClient(t, hub, 7)
	other := registeredClient(t, hub, 8)

	hub.NotifyOrder(7, map[string]interface{}{"total_price": "260"})

	select {
	case raw := <-client.Send:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "260", payload["total_price"])
	case <-time.After(time.Second):
		t.Fatal("no update delivered to watcher")
	}

	// watchers of other orders see nothing
	select {
	case <-other.Send:
		t.Fatal("update leaked to a different order's watcher")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_NotifyOrder_MultipleWatchers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := registeredClient(t, hub, 3)
	second := registeredClient(t, hub, 3)

	hub.NotifyOrder(3, map[string]interface{}{"state": "finalized"})

	for _, client := range []*Client{first, second} {
		select {
		case <-client.Send:
		case <-time.After(time.Second):
			t.Fatal("watcher missed the update")
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registeredClient(t, hub, 5)
	hub.Unregister(client)

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.orders[5]
		return !ok
	}, time.Second, 5*time.Millisecond)

	// the send channel is closed so WritePump can exit
	_, open := <-client.Send
	assert.False(t, open)
}
