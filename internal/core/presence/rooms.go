package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Rooms is the set-valued membership index keyed by ticket id. Join and leave
// are the only mutators. The membership set is the single source of truth for
// "is this connection in the room"; the identity's cached CurrentRoom is
// bookkeeping that Rooms keeps consistent via the registry.
type Rooms struct {
	mu sync.RWMutex

	// rooms maps ticket IDs to member connection sets
	rooms map[int64]map[uuid.UUID]struct{}

	registry *Registry
	logger   *slog.Logger
}

// NewRooms creates an empty membership index backed by the given registry.
func NewRooms(registry *Registry, logger *slog.Logger) *Rooms {
	return &Rooms{
		rooms:    make(map[int64]map[uuid.UUID]struct{}),
		registry: registry,
		logger:   logger.With("component", "rooms"),
	}
}

// Join adds the connection to the ticket's room and records the room on the
// identity. Joining does not leave previously joined rooms; multi-room
// membership lasts until the client leaves explicitly.
func (r *Rooms) Join(connectionID uuid.UUID, ticketID int64) {
	r.mu.Lock()
	if r.rooms[ticketID] == nil {
		r.rooms[ticketID] = make(map[uuid.UUID]struct{})
	}
	r.rooms[ticketID][connectionID] = struct{}{}
	r.mu.Unlock()

	r.registry.SetRoom(connectionID, ticketID)

	r.logger.Debug("joined room",
		"connection_id", connectionID,
		"ticket_id", ticketID,
	)
}

// Leave removes the connection from the ticket's room and clears the cached
// room field when it still points at this ticket.
func (r *Rooms) Leave(connectionID uuid.UUID, ticketID int64) {
	r.mu.Lock()
	if room, ok := r.rooms[ticketID]; ok {
		delete(room, connectionID)
		if len(room) == 0 {
			delete(r.rooms, ticketID)
		}
	}
	r.mu.Unlock()

	r.registry.ClearRoom(connectionID, ticketID)

	r.logger.Debug("left room",
		"connection_id", connectionID,
		"ticket_id", ticketID,
	)
}

// LeaveAll removes the connection from every room it is a member of.
// Called on disconnect.
func (r *Rooms) LeaveAll(connectionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ticketID, room := range r.rooms {
		if _, ok := room[connectionID]; ok {
			delete(room, connectionID)
			if len(room) == 0 {
				delete(r.rooms, ticketID)
			}
		}
	}
}

// MembersOf returns a snapshot of the room's member set.
func (r *Rooms) MembersOf(ticketID int64) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[ticketID]
	if !ok {
		return nil
	}
	members := make([]uuid.UUID, 0, len(room))
	for id := range room {
		members = append(members, id)
	}
	return members
}

// Contains reports whether the connection is currently a member of the room.
func (r *Rooms) Contains(ticketID int64, connectionID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[ticketID]
	if !ok {
		return false
	}
	_, member := room[connectionID]
	return member
}

// RoomCount returns the number of rooms with at least one member.
func (r *Rooms) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
