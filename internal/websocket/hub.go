package websocket

import (
	"encoding/json"
	"sync"

	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/pkg/logger"
)

const sendBufferSize = 64

// Client is one websocket session. A user may hold several.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// NewClient builds a session for userID with a buffered send queue.
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

type delivery struct {
	userID  uint
	message []byte
}

// Hub tracks connected sessions per user and fans order events out to them.
type Hub struct {
	clients map[uint]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	stop       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		deliver:    make(chan delivery, 1024),
		stop:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			sessions, ok := h.clients[client.UserID]
			if !ok {
				sessions = make(map[*Client]struct{})
				h.clients[client.UserID] = sessions
			}
			sessions[client] = struct{}{}
			count := len(sessions)
			h.mu.Unlock()

			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": count,
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			h.mu.RLock()
			var stalled []*Client
			for client := range h.clients[d.userID] {
				select {
				case client.Send <- d.message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"user_id": client.UserID,
				})
				h.remove(client)
			}

		case <-h.stop:
			h.mu.Lock()
			for userID, sessions := range h.clients {
				for client := range sessions {
					close(client.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			h.drainRegistrations()
			logger.Info("WebSocket hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := sessions[client]; !ok {
		return
	}
	delete(sessions, client)
	close(client.Send)
	if len(sessions) == 0 {
		delete(h.clients, client.UserID)
	}

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(sessions),
	})
}

// Stop closes every session and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// drainRegistrations closes sessions that were queued but never tracked.
func (h *Hub) drainRegistrations() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			return
		}
	}
}

// Register queues a session. After Stop the session is closed right away.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.stop:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.stop:
		close(client.Send)
	}
}

// Unregister queues a session for removal. It never blocks once the hub is stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// PublishToUser queues an order event for every session of userID. Events for
// offline users are dropped, as are events when the queue is full.
func (h *Hub) PublishToUser(userID uint, event service.OrderEvent) {
	if !h.IsUserOnline(userID) {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"order_id": event.OrderID,
		})
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, message: data}:
	default:
		logger.Warn("Delivery queue full, order event dropped", map[string]interface{}{
			"user_id":  userID,
			"order_id": event.OrderID,
		})
	}
}

// IsUserOnline reports whether userID has at least one open session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// SessionCount returns the number of open sessions for userID.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
