package ports

import (
	"context"

	"github.com/lorrc/ticket-relay/internal/core/domain"
)

// InsertMessageParams is the write-side shape of a ticket message. The
// database assigns id and created_at.
type InsertMessageParams struct {
	TicketID  int64
	Sender    domain.Role
	AccountID domain.AccountID
	Text      string
	ImageURL  string
}

// MessageRepository persists and loads ticket messages.
type MessageRepository interface {
	// Insert persists a message and returns the server-assigned id.
	Insert(ctx context.Context, params InsertMessageParams) (int64, error)
	// GetByID loads the canonical row, joined with the sender's display name.
	GetByID(ctx context.Context, id int64) (*domain.TicketMessage, error)
	// ListByTicket returns a ticket's messages ordered by creation time ascending.
	ListByTicket(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error)
}

// TicketRepository loads tickets joined with their owner's display name.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
}
