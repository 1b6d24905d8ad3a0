package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/presence"
)

// Hub owns the set of live clients and is the delivery side of the router:
// the presence layer decides WHO gets an event, the hub moves it onto the
// recipient's send queue. Delivery is fire-and-forget; a closed or backed-up
// client counts as offline.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	registry *presence.Registry
	rooms    *presence.Rooms
	logger   *slog.Logger
}

// Ensure Hub implements the Dispatcher interface.
var _ ports.Dispatcher = (*Hub)(nil)

func NewHub(registry *presence.Registry, rooms *presence.Rooms, logger *slog.Logger) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		registry: registry,
		rooms:    rooms,
		logger:   logger.With("component", "ws_hub"),
	}
}

// Attach registers a freshly upgraded client with the hub and the registry.
func (h *Hub) Attach(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.registry.Register(client.ID)

	h.logger.Info("client attached",
		"connection_id", client.ID,
		"active_connections", h.registry.Count(),
	)
}

// Detach tears down everything the connection touched: room memberships,
// the registry entry, the hub slot, and finally the send queue. Safe to call
// more than once for the same client.
func (h *Hub) Detach(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client.ID]
	delete(h.clients, client.ID)
	h.mu.Unlock()

	h.rooms.LeaveAll(client.ID)
	identity, _ := h.registry.Unregister(client.ID)
	client.CloseSend()

	if known {
		h.logger.Info("client detached",
			"connection_id", client.ID,
			"account_id", int64(identity.AccountID),
			"active_connections", h.registry.Count(),
		)
	}
}

// Send queues an event for one connection. It never blocks: a full send
// buffer means the client is too slow to matter and the event is dropped.
func (h *Hub) Send(connectionID uuid.UUID, event domain.Event) bool {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	select {
	case client.send <- event:
		return true
	default:
		h.logger.Warn("send buffer full, dropping event",
			"connection_id", connectionID,
			"event_type", string(event.Type),
		)
		return false
	}
}

// Shutdown detaches every client. The write pumps observe the closed send
// channels and issue close frames.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.Detach(client)
	}
}
