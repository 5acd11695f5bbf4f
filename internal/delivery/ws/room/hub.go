package ws_room

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/DMQQ/movie-picker-server/internal/model"
)

// Hub owns live connections and delivers outbound events to them.
// It knows nothing about rooms; callers name the audience.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnRef]*Client

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnRef]*Client),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ref] = client
	h.logger.Debug("client registered", slog.String("conn_id", string(client.ref)))
}

// Unregister closes the client's send queue. Safe to call twice.
func (h *Hub) Unregister(ref model.ConnRef) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.drop(ref)
}

func (h *Hub) drop(ref model.ConnRef) {
	client, ok := h.clients[ref]
	if !ok {
		return
	}
	delete(h.clients, ref)
	close(client.send)
	h.logger.Debug("client unregistered", slog.String("conn_id", string(ref)))
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) SendTo(ref model.ConnRef, event Outbound) {
	h.Broadcast([]model.ConnRef{ref}, event)
}

// Broadcast never blocks. A client whose queue is full is dropped;
// its read pump then sees the closed socket and runs the disconnect path.
func (h *Hub) Broadcast(audience []model.ConnRef, event Outbound) {
	if len(audience) == 0 {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("event", event.Type), slog.Any("error", err))
		return
	}

	var slow []model.ConnRef
	h.mu.RLock()
	for _, ref := range audience {
		client, ok := h.clients[ref]
		if !ok {
			continue
		}
		select {
		case client.send <- message:
		default:
			slow = append(slow, ref)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ref := range slow {
		h.logger.Warn("dropping slow client", slog.String("conn_id", string(ref)))
		h.drop(ref)
	}
}
