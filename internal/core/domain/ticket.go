package domain

// Ticket is the externally owned ticket entity, read-only from the relay's
// perspective. OwnerName is joined from the account table on load.
type Ticket struct {
	ID           int64     `json:"id"`
	AccountID    AccountID `json:"accountId"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Phone        string    `json:"phone,omitempty"`
	SMSRequested bool      `json:"smsRequested"`
	OwnerName    string    `json:"ownerName,omitempty"`
}
