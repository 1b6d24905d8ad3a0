package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// StatusHandler runs the REST path of the status update pipeline. The status
// change itself was persisted elsewhere; only the notification duty lands here.
type StatusHandler struct {
	statuses     ports.StatusService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewStatusHandler(statuses ports.StatusService, errorHandler *ErrorHandler, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		statuses:     statuses,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

type broadcastStatusRequest struct {
	TicketID  int64  `json:"ticketId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	UpdatedBy string `json:"updatedBy"`
}

// HandleBroadcast handles POST /api/broadcast-status-update.
func (h *StatusHandler) HandleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if req.TicketID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.ErrTicketIDRequired)
		return
	}
	if req.NewStatus == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrStatusRequired)
		return
	}

	notified, err := h.statuses.BroadcastToOwner(r.Context(), ports.StatusChangeParams{
		TicketID:  req.TicketID,
		OldStatus: req.OldStatus,
		NewStatus: req.NewStatus,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("status update broadcast",
		"ticket_id", req.TicketID,
		"new_status", req.NewStatus,
		"notified", notified,
	)

	WriteNotified(w, notified)
}
