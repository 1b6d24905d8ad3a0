package services

import "github.com/lorrc/ticket-relay/internal/core/domain"

// MessageNotification is the payload for the secondary routing events
// (new_user_message / new_admin_message). Username here is the client-supplied
// name; the room broadcast itself carries the canonical row.
type MessageNotification struct {
	TicketID int64                 `json:"ticketId"`
	Message  *domain.TicketMessage `json:"message"`
	Username string                `json:"username,omitempty"`
}

// StatusNotification is the payload for ticket_status_changed.
type StatusNotification struct {
	TicketID  int64  `json:"ticketId"`
	Title     string `json:"title,omitempty"`
	OldStatus string `json:"oldStatus,omitempty"`
	NewStatus string `json:"newStatus"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// SendErrorPayload is the payload for message_error, sent only to the
// originating connection.
type SendErrorPayload struct {
	TicketID int64  `json:"ticketId,omitempty"`
	Error    string `json:"error"`
}
