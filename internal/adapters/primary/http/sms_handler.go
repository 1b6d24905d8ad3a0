package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// SMSHandler triggers an outbound SMS notification for a ticket. The gateway
// call is an explicit REST action; nothing in the realtime pipelines sends
// texts on its own.
type SMSHandler struct {
	tickets      ports.TicketRepository
	gateway      ports.SMSGateway
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewSMSHandler(tickets ports.TicketRepository, gateway ports.SMSGateway, errorHandler *ErrorHandler, logger *slog.Logger) *SMSHandler {
	return &SMSHandler{
		tickets:      tickets,
		gateway:      gateway,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

type sendSMSRequest struct {
	Text string `json:"text"`
}

type sendSMSResponse struct {
	Success   bool   `json:"success"`
	Delivered bool   `json:"delivered"`
	Detail    string `json:"detail,omitempty"`
}

// HandleSend handles POST /api/tickets/{ticketId}/sms.
func (h *SMSHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.ErrTicketIDRequired)
		return
	}

	var req sendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}
	if req.Text == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrTextRequired)
		return
	}

	ticket, err := h.tickets.GetByID(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if !ticket.SMSRequested {
		h.errorHandler.Handle(w, r, apperrors.ErrSMSNotRequested)
		return
	}
	if ticket.Phone == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrPhoneMissing)
		return
	}

	result, err := h.gateway.Send(r.Context(), ticket.Phone, req.Text)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("sms dispatched",
		"ticket_id", ticketID,
		"delivered", result.Delivered,
	)

	WriteJSON(w, http.StatusOK, sendSMSResponse{
		Success:   true,
		Delivered: result.Delivered,
		Detail:    result.Detail,
	})
}
