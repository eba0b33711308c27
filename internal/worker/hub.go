package worker

import (
	"log/slog"
	"sync"
)

// Hub fans event notifications out to connected websocket clients. Clients
// that cannot keep up are disconnected rather than allowed to block the
// broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[chan []byte]struct{}), logger: logger}
}

// Subscribe registers a client and returns its message channel.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers a message to every subscribed client. A client with a
// full buffer is dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	var slow []chan []byte
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			slow = append(slow, ch)
		}
	}
	h.mu.RUnlock()

	for _, ch := range slow {
		h.logger.Warn("dropping slow notification client")
		h.Unsubscribe(ch)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
