package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/presence"
	"github.com/lorrc/ticket-relay/internal/infrastructure/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendQueueSize  = 64
)

// Client is a middleman between one websocket connection and the hub.
// Inbound events are handled synchronously on the read pump, which gives each
// connection strict receipt-order processing; concurrency exists only across
// connections.
type Client struct {
	ID   uuid.UUID
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound events.
	send chan domain.Event

	registry *presence.Registry
	rooms    *presence.Rooms
	router   ports.EventRouter
	messages ports.MessageService
	statuses ports.StatusService

	logger    *slog.Logger
	closeOnce sync.Once
}

func NewClient(
	hub *Hub,
	conn *websocket.Conn,
	registry *presence.Registry,
	rooms *presence.Rooms,
	router ports.EventRouter,
	messages ports.MessageService,
	statuses ports.StatusService,
	logger *slog.Logger,
) *Client {
	id := uuid.New()
	return &Client{
		ID:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan domain.Event, sendQueueSize),
		registry: registry,
		rooms:    rooms,
		router:   router,
		messages: messages,
		statuses: statuses,
		logger:   logger.With("connection_id", id.String()),
	}
}

// CloseSend closes the outbound queue exactly once. The write pump observes
// the close and shuts the connection down.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump pumps inbound frames off the connection and dispatches them.
// It runs until the connection errors or closes, then detaches the client.
func (c *Client) ReadPump() {
	defer c.hub.Detach(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read error", "error", err)
			}
			break
		}
		c.handleIncomingMessage(message)
	}
}

// WritePump pumps events from the send queue to the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the queue. Send a close frame.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := json.NewEncoder(w).Encode(event); err != nil {
				c.logger.Warn("encode error", "error", err)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// --- Incoming event handling ---

// ClientMessage is the envelope for events sent *from* the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinSystemPayload struct {
	UserID   domain.AccountID `json:"userId"`
	Username string           `json:"username"`
	IsAdmin  bool             `json:"isAdmin"`
}

type joinTicketPayload struct {
	TicketID int64            `json:"ticketId"`
	UserID   domain.AccountID `json:"userId"`
	Username string           `json:"username"`
	IsAdmin  bool             `json:"isAdmin"`
}

type leaveTicketPayload struct {
	TicketID int64  `json:"ticketId"`
	Username string `json:"username"`
}

type sendMessagePayload struct {
	TicketID int64            `json:"ticketId"`
	UserID   domain.AccountID `json:"userId"`
	Username string           `json:"username"`
	Text     string           `json:"text"`
	Sender   string           `json:"sender"`
	ImageURL string           `json:"image_url"`
}

type typingPayload struct {
	TicketID int64  `json:"ticketId"`
	Username string `json:"username"`
}

type ticketCreatedPayload struct {
	TicketID int64  `json:"ticketId"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Username string `json:"username"`
}

type statusUpdatedPayload struct {
	TicketID  int64  `json:"ticketId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	UpdatedBy string `json:"updatedBy"`
}

// presencePayload announces a member arriving in or leaving a room.
type presencePayload struct {
	Username string `json:"username"`
}

// systemJoinedPayload acknowledges a completed join_system.
type systemJoinedPayload struct {
	ConnectionID string           `json:"connectionId"`
	UserID       domain.AccountID `json:"userId"`
	Username     string           `json:"username"`
	Role         string           `json:"role"`
}

func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case "join_system":
		c.handleJoinSystem(msg.Payload)
	case "join_ticket":
		c.handleJoinTicket(msg.Payload)
	case "leave_ticket":
		c.handleLeaveTicket(msg.Payload)
	case "send_message":
		c.handleSendMessage(msg.Payload)
	case "typing":
		c.handleTyping(msg.Payload, domain.EventUserTyping)
	case "stop_typing":
		c.handleTyping(msg.Payload, domain.EventUserStopTyping)
	case "ticket_created":
		c.handleTicketCreated(msg.Payload)
	case "status_updated":
		c.handleStatusUpdated(msg.Payload)
	default:
		c.logger.Warn("unknown event type", "event_type", msg.Type)
	}
}

func (c *Client) handleJoinSystem(raw json.RawMessage) {
	var p joinSystemPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad join_system payload", "error", err)
		return
	}

	role := domain.RoleFromAdminFlag(p.IsAdmin)
	c.registry.SetIdentity(c.ID, p.UserID, p.Username, role)

	c.router.SendToConnection(c.ID, domain.EventSystemJoined, systemJoinedPayload{
		ConnectionID: c.ID.String(),
		UserID:       p.UserID,
		Username:     p.Username,
		Role:         string(role),
	})
}

func (c *Client) handleJoinTicket(raw json.RawMessage) {
	var p joinTicketPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad join_ticket payload", "error", err)
		return
	}
	if p.TicketID <= 0 {
		c.logger.Warn("join_ticket without ticket id")
		return
	}

	// The identity fields ride along on join_ticket so a client that skipped
	// join_system still gets registered before the room sees it.
	if p.UserID != 0 || p.Username != "" {
		c.registry.SetIdentity(c.ID, p.UserID, p.Username, domain.RoleFromAdminFlag(p.IsAdmin))
	}

	c.rooms.Join(c.ID, p.TicketID)
	c.router.BroadcastToRoom(p.TicketID, domain.EventUserJoined, presencePayload{Username: p.Username}, c.ID)
}

func (c *Client) handleLeaveTicket(raw json.RawMessage) {
	var p leaveTicketPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad leave_ticket payload", "error", err)
		return
	}
	if p.TicketID <= 0 {
		return
	}

	c.rooms.Leave(c.ID, p.TicketID)
	c.router.BroadcastToRoom(p.TicketID, domain.EventUserLeft, presencePayload{Username: p.Username}, c.ID)
}

func (c *Client) handleSendMessage(raw json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad send_message payload", "error", err)
		return
	}

	sender := domain.RoleEndUser
	if p.Sender == string(domain.RoleAdmin) {
		sender = domain.RoleAdmin
	}

	ctx := logging.WithConnectionID(context.Background(), c.ID.String())
	if _, err := c.messages.SendMessage(ctx, ports.SendMessageParams{
		ConnectionID: c.ID,
		TicketID:     p.TicketID,
		AccountID:    p.UserID,
		Username:     p.Username,
		Sender:       sender,
		Text:         p.Text,
		ImageURL:     p.ImageURL,
	}); err != nil {
		// The pipeline already reported message_error to this connection.
		c.logger.Warn("message pipeline failed", "ticket_id", p.TicketID, "error", err)
	}
}

func (c *Client) handleTyping(raw json.RawMessage, eventType domain.EventType) {
	var p typingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad typing payload", "error", err)
		return
	}
	if p.TicketID <= 0 {
		return
	}

	// Relay only, nothing is persisted. The typist is excluded.
	c.router.BroadcastToRoom(p.TicketID, eventType, presencePayload{Username: p.Username}, c.ID)
}

func (c *Client) handleTicketCreated(raw json.RawMessage) {
	var p ticketCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad ticket_created payload", "error", err)
		return
	}

	notified := c.router.BroadcastToAdmins(domain.EventNewTicket, p)
	c.logger.Info("ticket announcement relayed",
		"ticket_id", p.TicketID,
		"admins_notified", notified,
	)
}

func (c *Client) handleStatusUpdated(raw json.RawMessage) {
	var p statusUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("bad status_updated payload", "error", err)
		return
	}

	ctx := logging.WithConnectionID(context.Background(), c.ID.String())
	if err := c.statuses.BroadcastRealtime(ctx, ports.StatusChangeParams{
		TicketID:  p.TicketID,
		OldStatus: p.OldStatus,
		NewStatus: p.NewStatus,
		UpdatedBy: p.UpdatedBy,
	}); err != nil {
		// Fire-and-forget path: log and move on, nothing goes back to the caller.
		c.logger.Warn("status broadcast failed", "ticket_id", p.TicketID, "error", err)
	}
}
