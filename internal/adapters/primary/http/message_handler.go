package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/lorrc/ticket-relay/internal/core/errors"
	"github.com/lorrc/ticket-relay/internal/core/ports"
)

// MessageHandler serves ticket message history.
type MessageHandler struct {
	messages     ports.MessageService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewMessageHandler(messages ports.MessageService, errorHandler *ErrorHandler, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages:     messages,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// HandleHistory handles GET /api/messages/{ticketId}.
// Messages come back ordered by creation time ascending.
func (h *MessageHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketId"), 10, 64)
	if err != nil || ticketID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.ErrTicketIDRequired)
		return
	}

	messages, err := h.messages.History(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteMessages(w, messages)
}

// RegisterRoutes registers message routes on the given router.
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{ticketId}", h.HandleHistory)
}
