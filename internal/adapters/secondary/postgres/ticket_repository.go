package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/utils"
)

// TicketRepository is the secondary adapter for ticket reads. Tickets are
// owned by an external system; the relay only loads them.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// GetByID loads a ticket joined with the owner's display name.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
		SELECT t.id, t.account_id, t.title, t.status, t.phone, t.sms_requested,
		       COALESCE(a.login, '') AS owner_name
		FROM tickets t
		LEFT JOIN account a ON a.id = t.account_id
		WHERE t.id = $1`

	var (
		ticket       domain.Ticket
		accountID    int64
		phone        pgtype.Text
		smsRequested pgtype.Bool
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&accountID,
		&ticket.Title,
		&ticket.Status,
		&phone,
		&smsRequested,
		&ticket.OwnerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	ticket.AccountID = domain.AccountID(accountID)
	ticket.Phone = utils.FromText(phone)
	ticket.SMSRequested = utils.FromBool(smsRequested)
	return &ticket, nil
}
