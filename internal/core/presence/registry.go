package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
)

// Registry maps each live connection to its identity record and maintains the
// admin set. It is internally synchronized: pump goroutines and HTTP handlers
// touch it concurrently. The registry owns the identity records exclusively;
// lookups return copies.
type Registry struct {
	mu sync.RWMutex

	// conns maps connection IDs to their identity records
	conns map[uuid.UUID]*domain.ConnectionIdentity

	// admins holds the subset of conns whose role is admin
	admins map[uuid.UUID]struct{}

	logger *slog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[uuid.UUID]*domain.ConnectionIdentity),
		admins: make(map[uuid.UUID]struct{}),
		logger: logger.With("component", "registry"),
	}
}

// Register creates a pending identity for the connection. Registering an
// already-known connection is a no-op.
func (r *Registry) Register(connectionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connectionID]; ok {
		return
	}
	r.conns[connectionID] = &domain.ConnectionIdentity{ConnectionID: connectionID}

	r.logger.Debug("connection registered",
		"connection_id", connectionID,
		"total_connections", len(r.conns),
	)
}

// SetIdentity overwrites the identity fields of a registered connection and
// keeps the admin set in step. Unknown connections are ignored; the transport
// layer only calls this for live connections.
func (r *Registry) SetIdentity(connectionID uuid.UUID, accountID domain.AccountID, displayName string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.conns[connectionID]
	if !ok {
		return
	}

	identity.AccountID = accountID
	identity.DisplayName = displayName
	identity.Role = role

	if role == domain.RoleAdmin {
		r.admins[connectionID] = struct{}{}
	} else {
		delete(r.admins, connectionID)
	}

	r.logger.Info("identity set",
		"connection_id", connectionID,
		"account_id", int64(accountID),
		"role", string(role),
	)
}

// SetRoom records the ticket the connection last joined.
func (r *Registry) SetRoom(connectionID uuid.UUID, ticketID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity, ok := r.conns[connectionID]; ok {
		identity.CurrentRoom = ticketID
	}
}

// ClearRoom resets the cached room, but only if it still points at ticketID.
// Keeps the cached field consistent with the membership index after a leave.
func (r *Registry) ClearRoom(connectionID uuid.UUID, ticketID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity, ok := r.conns[connectionID]; ok && identity.CurrentRoom == ticketID {
		identity.CurrentRoom = 0
	}
}

// Lookup returns a copy of the connection's identity.
func (r *Registry) Lookup(connectionID uuid.UUID) (domain.ConnectionIdentity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.conns[connectionID]
	if !ok {
		return domain.ConnectionIdentity{}, false
	}
	return *identity, true
}

// ConnectionsForAccount scans the registry for every connection held by the
// account, optionally restricted to a role (domain.RolePending matches any).
// Account ids are already canonical at this boundary, so plain equality is a
// normalized comparison.
func (r *Registry) ConnectionsForAccount(accountID domain.AccountID, roleFilter domain.Role) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []uuid.UUID
	for id, identity := range r.conns {
		if identity.AccountID != accountID {
			continue
		}
		if roleFilter != domain.RolePending && identity.Role != roleFilter {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Unregister removes the connection from the registry and the admin set.
// A duplicate disconnect signal is a clean miss, not an error.
func (r *Registry) Unregister(connectionID uuid.UUID) (domain.ConnectionIdentity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.conns[connectionID]
	if !ok {
		return domain.ConnectionIdentity{}, false
	}

	delete(r.conns, connectionID)
	delete(r.admins, connectionID)

	r.logger.Info("connection unregistered",
		"connection_id", connectionID,
		"account_id", int64(identity.AccountID),
	)
	return *identity, true
}

// Admins returns a snapshot of the admin connection set.
func (r *Registry) Admins() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.admins))
	for id := range r.admins {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// AdminCount returns the number of registered admin connections.
func (r *Registry) AdminCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.admins)
}
