package domain

import "time"

// TicketMessage is one persisted chat message on a ticket. The id, createdAt
// and displayUsername fields are server-assigned: every persisted message is
// re-read from storage before broadcast so the payload never carries
// client-supplied timestamps or usernames.
type TicketMessage struct {
	ID              int64     `json:"id"`
	TicketID        int64     `json:"ticketId"`
	Sender          Role      `json:"sender"`
	AccountID       AccountID `json:"accountId"`
	Text            string    `json:"text"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	DisplayUsername string    `json:"displayUsername"`
}
