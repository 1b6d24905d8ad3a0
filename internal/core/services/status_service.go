package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// StatusService runs the status update pipeline. The status change itself was
// persisted by a different actor; this pipeline only announces it.
type StatusService struct {
	tickets ports.TicketRepository
	router  ports.EventRouter
	logger  *slog.Logger
}

var _ ports.StatusService = (*StatusService)(nil)

// NewStatusService creates the status pipeline.
func NewStatusService(tickets ports.TicketRepository, router ports.EventRouter, logger *slog.Logger) *StatusService {
	return &StatusService{
		tickets: tickets,
		router:  router,
		logger:  logger.With("component", "status_pipeline"),
	}
}

// BroadcastRealtime notifies all room members, and separately the owner's
// connections outside the room (owners who navigated away still hear about
// it). In-room owner connections are excluded from the second delivery, so
// every connection receives at most one event.
func (s *StatusService) BroadcastRealtime(ctx context.Context, params ports.StatusChangeParams) error {
	ticket, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		return err
	}

	payload := s.notification(ticket, params)
	inRoom := s.router.BroadcastToRoom(params.TicketID, domain.EventTicketStatusChanged, payload, uuid.Nil)
	outOfRoom := s.router.SendToAccountOutsideRoom(ticket.AccountID, params.TicketID, domain.EventTicketStatusChanged, payload)

	s.logger.Info("status change broadcast",
		"ticket_id", params.TicketID,
		"new_status", params.NewStatus,
		"room_deliveries", inRoom,
		"owner_deliveries", outOfRoom,
	)
	return nil
}

// BroadcastToOwner notifies only the owner's end-user connections. The admin
// who triggered the change already knows, so there is no room broadcast on
// this path. Zero reachable connections is a normal outcome.
func (s *StatusService) BroadcastToOwner(ctx context.Context, params ports.StatusChangeParams) (int, error) {
	ticket, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		return 0, err
	}

	payload := s.notification(ticket, params)
	notified := s.router.SendToAccount(ticket.AccountID, domain.RoleEndUser, domain.EventTicketStatusChanged, payload)

	s.logger.Info("status change sent to owner",
		"ticket_id", params.TicketID,
		"owner_account_id", int64(ticket.AccountID),
		"notified", notified,
	)
	return notified, nil
}

func (s *StatusService) notification(ticket *domain.Ticket, params ports.StatusChangeParams) StatusNotification {
	return StatusNotification{
		TicketID:  params.TicketID,
		Title:     ticket.Title,
		OldStatus: params.OldStatus,
		NewStatus: params.NewStatus,
		UpdatedBy: params.UpdatedBy,
	}
}
