package domain

// EventType defines the type of real-time event.
type EventType string

// Outbound event types.
const (
	EventSystemJoined        EventType = "system_joined"
	EventUserJoined          EventType = "user_joined"
	EventUserLeft            EventType = "user_left"
	EventNewMessage          EventType = "new_message"
	EventMessageError        EventType = "message_error"
	EventUserTyping          EventType = "user_typing"
	EventUserStopTyping      EventType = "user_stop_typing"
	EventNewUserMessage      EventType = "new_user_message"
	EventNewAdminMessage     EventType = "new_admin_message"
	EventNewTicket           EventType = "new_ticket"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType `json:"type"`
	Payload  any       `json:"payload,omitempty"`
	TicketID int64     `json:"ticketId,omitempty"` // set when the event is routed to a ticket room
}
