package presence_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/ticket-relay/internal/core/domain"
	"github.com/lorrc/ticket-relay/internal/core/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresence(t *testing.T) (*presence.Registry, *presence.Rooms) {
	t.Helper()
	reg := presence.NewRegistry(testLogger())
	return reg, presence.NewRooms(reg, testLogger())
}

func TestRooms_JoinAndLeave(t *testing.T) {
	reg, rooms := newPresence(t)
	connID := uuid.New()
	reg.Register(connID)

	rooms.Join(connID, 7)

	assert.True(t, rooms.Contains(7, connID))
	assert.Equal(t, []uuid.UUID{connID}, rooms.MembersOf(7))
	assert.Equal(t, 1, rooms.RoomCount())

	identity, _ := reg.Lookup(connID)
	assert.Equal(t, int64(7), identity.CurrentRoom)

	rooms.Leave(connID, 7)

	assert.False(t, rooms.Contains(7, connID))
	assert.Empty(t, rooms.MembersOf(7))
	assert.Equal(t, 0, rooms.RoomCount())

	// The cached room field follows the membership set.
	identity, _ = reg.Lookup(connID)
	assert.Equal(t, int64(0), identity.CurrentRoom)
}

func TestRooms_JoinDoesNotLeavePreviousRoom(t *testing.T) {
	reg, rooms := newPresence(t)
	connID := uuid.New()
	reg.Register(connID)

	rooms.Join(connID, 7)
	rooms.Join(connID, 9)

	assert.True(t, rooms.Contains(7, connID))
	assert.True(t, rooms.Contains(9, connID))

	// CurrentRoom tracks the most recent join only.
	identity, _ := reg.Lookup(connID)
	assert.Equal(t, int64(9), identity.CurrentRoom)
}

func TestRooms_LeaveStaleRoomKeepsCurrentRoom(t *testing.T) {
	reg, rooms := newPresence(t)
	connID := uuid.New()
	reg.Register(connID)

	rooms.Join(connID, 7)
	rooms.Join(connID, 9)
	rooms.Leave(connID, 7)

	// Leaving the older room must not clear the cached pointer at room 9.
	identity, _ := reg.Lookup(connID)
	assert.Equal(t, int64(9), identity.CurrentRoom)
	assert.True(t, rooms.Contains(9, connID))
}

func TestRooms_LeaveIsIdempotent(t *testing.T) {
	_, rooms := newPresence(t)
	connID := uuid.New()

	// Leaving a room never joined must not panic or create state.
	rooms.Leave(connID, 7)
	assert.Equal(t, 0, rooms.RoomCount())
}

func TestRooms_LeaveAll(t *testing.T) {
	reg, rooms := newPresence(t)
	connID := uuid.New()
	other := uuid.New()
	reg.Register(connID)
	reg.Register(other)

	rooms.Join(connID, 7)
	rooms.Join(connID, 9)
	rooms.Join(other, 7)

	rooms.LeaveAll(connID)

	assert.False(t, rooms.Contains(7, connID))
	assert.False(t, rooms.Contains(9, connID))
	assert.True(t, rooms.Contains(7, other))
	assert.Equal(t, 1, rooms.RoomCount())
}

func TestRooms_MembershipIsolatedPerTicket(t *testing.T) {
	reg, rooms := newPresence(t)
	a := uuid.New()
	b := uuid.New()
	reg.Register(a)
	reg.Register(b)
	reg.SetIdentity(a, 1, "a", domain.RoleEndUser)
	reg.SetIdentity(b, 2, "b", domain.RoleEndUser)

	rooms.Join(a, 7)
	rooms.Join(b, 9)

	require.Equal(t, []uuid.UUID{a}, rooms.MembersOf(7))
	require.Equal(t, []uuid.UUID{b}, rooms.MembersOf(9))
}
