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

// MessageRepository is the secondary adapter for ticket message persistence.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// Ensure MessageRepository implements the ports.MessageRepository interface.
var _ ports.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new message repository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `
	m.id, m.ticket_id, m.sender, m.account_id, m.text, m.image_url, m.created_at,
	COALESCE(a.login, '') AS display_username`

// Insert persists a message and returns the server-assigned id.
func (r *MessageRepository) Insert(ctx context.Context, params ports.InsertMessageParams) (int64, error) {
	const query = `
		INSERT INTO ticket_messages (ticket_id, sender, account_id, text, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		params.TicketID,
		string(params.Sender),
		int64(params.AccountID),
		params.Text,
		utils.ToText(params.ImageURL),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID loads the canonical row joined with the sender's display name.
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.TicketMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM ticket_messages m
		LEFT JOIN account a ON a.id = m.account_id
		WHERE m.id = $1`

	msg, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}
	return msg, nil
}

// ListByTicket returns the ticket's messages ordered by creation time ascending.
func (r *MessageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM ticket_messages m
		LEFT JOIN account a ON a.id = m.account_id
		WHERE m.ticket_id = $1
		ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.TicketMessage, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.TicketMessage, error) {
	var (
		msg       domain.TicketMessage
		sender    string
		accountID int64
		imageURL  pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&msg.ID,
		&msg.TicketID,
		&sender,
		&accountID,
		&msg.Text,
		&imageURL,
		&createdAt,
		&msg.DisplayUsername,
	)
	if err != nil {
		return nil, err
	}

	msg.Sender = domain.Role(sender)
	msg.AccountID = domain.AccountID(accountID)
	msg.ImageURL = utils.FromText(imageURL)
	msg.CreatedAt = createdAt.Time
	return &msg, nil
}
