package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
)

// Dispatcher is the transport-side delivery primitive. Send queues an event
// for one connection and reports whether it was accepted; it never blocks on
// the recipient. A connection that is gone or backed up yields false, which
// callers treat as "recipient offline", not an error.
type Dispatcher interface {
	Send(connectionID uuid.UUID, event domain.Event) bool
}

// EventRouter computes delivery target sets and dispatches to them. It holds
// no business policy; the pipelines decide what to route where.
type EventRouter interface {
	// BroadcastToRoom delivers to every current member of the ticket's room,
	// skipping exclude when it is not uuid.Nil. Returns the delivered count.
	BroadcastToRoom(ticketID int64, eventType domain.EventType, payload any, exclude uuid.UUID) int
	// BroadcastToAdmins delivers to every registered admin connection.
	BroadcastToAdmins(eventType domain.EventType, payload any) int
	// SendToConnection delivers to a single connection.
	SendToConnection(connectionID uuid.UUID, eventType domain.EventType, payload any) bool
	// SendToAccount delivers to every connection of the account, optionally
	// restricted to a role (domain.RolePending means any role).
	SendToAccount(accountID domain.AccountID, roleFilter domain.Role, eventType domain.EventType, payload any) int
	// SendToAccountOutsideRoom delivers to the account's connections that are
	// not currently members of the ticket's room.
	SendToAccountOutsideRoom(accountID domain.AccountID, ticketID int64, eventType domain.EventType, payload any) int
}

// SendMessageParams is the input to the ticket message pipeline.
type SendMessageParams struct {
	ConnectionID uuid.UUID
	TicketID     int64
	AccountID    domain.AccountID
	Username     string
	Sender       domain.Role
	Text         string
	ImageURL     string
}

// MessageService runs the ticket message pipeline and serves message history.
type MessageService interface {
	SendMessage(ctx context.Context, params SendMessageParams) (*domain.TicketMessage, error)
	History(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error)
}

// StatusChangeParams describes an externally persisted status change that
// only needs to be announced.
type StatusChangeParams struct {
	TicketID  int64
	OldStatus string
	NewStatus string
	UpdatedBy string
}

// StatusService runs the status update pipeline.
type StatusService interface {
	// BroadcastRealtime notifies the ticket's room plus the owner's
	// connections outside the room.
	BroadcastRealtime(ctx context.Context, params StatusChangeParams) error
	// BroadcastToOwner notifies only the owner's end-user connections and
	// returns how many were reached.
	BroadcastToOwner(ctx context.Context, params StatusChangeParams) (int, error)
}

// SMSResult reports the outcome of one gateway call.
type SMSResult struct {
	Delivered bool
	Detail    string
}

// SMSGateway sends a text message through the external gateway.
// Fire-and-forget: Delivered means "the gateway accepted it", not "received".
type SMSGateway interface {
	Send(ctx context.Context, destination, text string) (SMSResult, error)
}
