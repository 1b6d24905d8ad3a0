package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// MessageService runs the ticket message pipeline:
// persist -> reload canonical row -> room broadcast -> secondary routing.
type MessageService struct {
	messages ports.MessageRepository
	tickets  ports.TicketRepository
	router   ports.EventRouter
	logger   *slog.Logger
}

var _ ports.MessageService = (*MessageService)(nil)

// NewMessageService creates the message pipeline.
func NewMessageService(
	messages ports.MessageRepository,
	tickets ports.TicketRepository,
	router ports.EventRouter,
	logger *slog.Logger,
) *MessageService {
	return &MessageService{
		messages: messages,
		tickets:  tickets,
		router:   router,
		logger:   logger.With("component", "message_pipeline"),
	}
}

// SendMessage processes one inbound send_message event. Failures before the
// broadcast step are reported as message_error to the originating connection
// only; other room members never learn a send was attempted.
func (s *MessageService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.TicketMessage, error) {
	if params.TicketID <= 0 {
		s.reportSendError(params, "ticketId is required")
		return nil, apperrors.ErrTicketIDRequired
	}

	// Persist. Text defaults to "" upstream; imageUrl is optional.
	id, err := s.messages.Insert(ctx, ports.InsertMessageParams{
		TicketID:  params.TicketID,
		Sender:    params.Sender,
		AccountID: params.AccountID,
		Text:      params.Text,
		ImageURL:  params.ImageURL,
	})
	if err != nil {
		s.logger.Error("message insert failed",
			"ticket_id", params.TicketID,
			"account_id", int64(params.AccountID),
			"error", err,
		)
		s.reportSendError(params, "failed to save message")
		return nil, fmt.Errorf("insert message: %w", err)
	}

	// Reload the canonical row: server-assigned id/createdAt and the joined
	// display name. The broadcast never carries client-supplied fields.
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("message reload failed", "message_id", id, "error", err)
		s.reportSendError(params, "failed to load saved message")
		return nil, fmt.Errorf("reload message %d: %w", id, err)
	}

	// Room broadcast, sender included: the echo arrives via the room.
	s.router.BroadcastToRoom(params.TicketID, domain.EventNewMessage, msg, uuid.Nil)

	s.routeSecondary(ctx, params, msg)
	return msg, nil
}

// routeSecondary applies the role-based notification policy. A failure here
// never fails the send: the message is already persisted and broadcast.
func (s *MessageService) routeSecondary(ctx context.Context, params ports.SendMessageParams, msg *domain.TicketMessage) {
	notification := MessageNotification{
		TicketID: params.TicketID,
		Message:  msg,
		Username: params.Username,
	}

	if params.Sender != domain.RoleAdmin {
		// End-user message: every admin hears about it. Zero admins online
		// is a normal outcome.
		s.router.BroadcastToAdmins(domain.EventNewUserMessage, notification)
		return
	}

	// Admin message: notify the ticket owner's end-user connections, in or
	// out of the room. No SMS on this path; SMS is an explicit separate
	// administrative action.
	ticket, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		s.logger.Warn("owner lookup failed, skipping owner notification",
			"ticket_id", params.TicketID,
			"error", err,
		)
		return
	}
	s.router.SendToAccount(ticket.AccountID, domain.RoleEndUser, domain.EventNewAdminMessage, notification)
}

// History returns the ticket's messages ordered by creation time ascending.
func (s *MessageService) History(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	if ticketID <= 0 {
		return nil, apperrors.ErrTicketIDRequired
	}
	return s.messages.ListByTicket(ctx, ticketID)
}

func (s *MessageService) reportSendError(params ports.SendMessageParams, detail string) {
	s.router.SendToConnection(params.ConnectionID, domain.EventMessageError, SendErrorPayload{
		TicketID: params.TicketID,
		Error:    detail,
	})
}
