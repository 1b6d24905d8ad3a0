package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	wsAdapter "github.com/lorrc/ticket-relay/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-relay/internal/auth"
	"github.com/lorrc/ticket-relay/internal/config"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/presence"
)

// WebSocketHandler handles WebSocket connection upgrades
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	registry *presence.Registry
	rooms    *presence.Rooms
	router   ports.EventRouter
	messages ports.MessageService
	statuses ports.StatusService

	// tm is nil when the channel is open; identity then arrives via join_system.
	tm       *auth.TokenManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	registry *presence.Registry,
	rooms *presence.Rooms,
	router ports.EventRouter,
	messages ports.MessageService,
	statuses ports.StatusService,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:      hub,
		registry: registry,
		rooms:    rooms,
		router:   router,
		messages: messages,
		statuses: statuses,
		tm:       tm,
		logger:   logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins
	isDevelopment := cfg.IsDevelopment()

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if isDevelopment {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	// Validate the token when token auth is enabled. The claims pre-seed the
	// identity; a later join_system from the client overwrites it.
	var claims *auth.Claims
	if h.tm != nil {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			h.logger.Warn("websocket connection rejected: missing token",
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
			)
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		var err error
		claims, err = h.tm.ValidateToken(tokenString)
		if err != nil {
			h.logger.Warn("websocket connection rejected: invalid token",
				"request_id", requestID,
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, h.registry, h.rooms, h.router, h.messages, h.statuses, h.logger)
	h.hub.Attach(client)

	if claims != nil {
		h.registry.SetIdentity(client.ID, claims.AccountID, "", domain.RoleFromAdminFlag(claims.Admin))
	}

	h.logger.Info("websocket connection established",
		"request_id", requestID,
		"connection_id", client.ID,
		"remote_addr", r.RemoteAddr,
	)

	go client.WritePump()
	go client.ReadPump()
}
