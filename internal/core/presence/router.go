package presence

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// Router computes delivery target sets from the registry and room index and
// dispatches through the transport's Dispatcher. Target sets are snapshots at
// dispatch time: a connection that disconnects mid-computation simply
// receives nothing. Per-recipient failures never abort delivery to others.
type Router struct {
	registry   *Registry
	rooms      *Rooms
	dispatcher ports.Dispatcher
	logger     *slog.Logger
}

var _ ports.EventRouter = (*Router)(nil)

// NewRouter creates an event router over the given presence state.
func NewRouter(registry *Registry, rooms *Rooms, dispatcher ports.Dispatcher, logger *slog.Logger) *Router {
	return &Router{
		registry:   registry,
		rooms:      rooms,
		dispatcher: dispatcher,
		logger:     logger.With("component", "router"),
	}
}

// BroadcastToRoom delivers the event to every current member of the ticket's
// room, skipping exclude when set. Returns how many deliveries were accepted.
func (r *Router) BroadcastToRoom(ticketID int64, eventType domain.EventType, payload any, exclude uuid.UUID) int {
	event := domain.Event{Type: eventType, Payload: payload, TicketID: ticketID}

	delivered := 0
	for _, id := range r.rooms.MembersOf(ticketID) {
		if exclude != uuid.Nil && id == exclude {
			continue
		}
		if r.dispatcher.Send(id, event) {
			delivered++
		}
	}

	r.logger.Debug("room broadcast",
		"event_type", string(eventType),
		"ticket_id", ticketID,
		"delivered", delivered,
	)
	return delivered
}

// BroadcastToAdmins delivers the event to every registered admin connection.
// Admins removed concurrently are skipped, not an error.
func (r *Router) BroadcastToAdmins(eventType domain.EventType, payload any) int {
	event := domain.Event{Type: eventType, Payload: payload}

	delivered := 0
	for _, id := range r.registry.Admins() {
		if r.dispatcher.Send(id, event) {
			delivered++
		}
	}

	r.logger.Info("admin broadcast",
		"event_type", string(eventType),
		"admins_notified", delivered,
	)
	return delivered
}

// SendToConnection delivers the event to a single connection.
func (r *Router) SendToConnection(connectionID uuid.UUID, eventType domain.EventType, payload any) bool {
	return r.dispatcher.Send(connectionID, domain.Event{Type: eventType, Payload: payload})
}

// SendToAccount delivers the event to every connection of the account that
// passes the role filter.
func (r *Router) SendToAccount(accountID domain.AccountID, roleFilter domain.Role, eventType domain.EventType, payload any) int {
	event := domain.Event{Type: eventType, Payload: payload}

	delivered := 0
	for _, id := range r.registry.ConnectionsForAccount(accountID, roleFilter) {
		if r.dispatcher.Send(id, event) {
			delivered++
		}
	}
	return delivered
}

// SendToAccountOutsideRoom delivers to the account's connections that are not
// members of the ticket's room. Together with a room broadcast this yields at
// most one delivery per connection: in-room owner connections are excluded
// here because the room broadcast already reached them.
func (r *Router) SendToAccountOutsideRoom(accountID domain.AccountID, ticketID int64, eventType domain.EventType, payload any) int {
	event := domain.Event{Type: eventType, Payload: payload, TicketID: ticketID}

	delivered := 0
	for _, id := range r.registry.ConnectionsForAccount(accountID, domain.RolePending) {
		if r.rooms.Contains(ticketID, id) {
			continue
		}
		if r.dispatcher.Send(id, event) {
			delivered++
		}
	}
	return delivered
}
