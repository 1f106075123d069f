package classroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomLifecycle(t *testing.T) {
	room := NewRoom(5, "daily")
	assert.Equal(t, RoomPending, room.Status)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, room.MarkCreated("room_abc", "https://x.daily.co/room_abc", expiry))
	assert.Equal(t, RoomCreated, room.Status)
	assert.Equal(t, "room_abc", room.ProviderRoomID)

	require.NoError(t, room.MarkActive())
	require.NoError(t, room.MarkEnded())
	assert.True(t, room.Status.IsTerminal())
}

func TestRoomTransitions_Invalid(t *testing.T) {
	room := NewRoom(5, "daily")

	// cannot activate a room the provider never created
	assert.ErrorIs(t, room.MarkActive(), ErrInvalidRoomTransition)

	require.NoError(t, room.MarkFailed("provider down"))
	assert.Equal(t, "provider down", room.FailureReason)
	assert.ErrorIs(t, room.MarkCreated("r", "u", time.Now()), ErrInvalidRoomTransition)
	assert.ErrorIs(t, room.MarkEnded(), ErrInvalidRoomTransition)
}

func TestRoomExpiry(t *testing.T) {
	room := NewRoom(5, "daily")
	require.NoError(t, room.MarkCreated("room_abc", "url", time.Now().Add(time.Hour)))
	require.NoError(t, room.MarkExpired())
	assert.True(t, room.Status.IsTerminal())
}

func TestIsJoinable(t *testing.T) {
	room := NewRoom(5, "daily")
	assert.False(t, room.IsJoinable())

	require.NoError(t, room.MarkCreated("room_abc", "url", time.Now().Add(time.Hour)))
	assert.True(t, room.IsJoinable())

	require.NoError(t, room.MarkActive())
	assert.True(t, room.IsJoinable())

	past := time.Now().Add(-time.Minute)
	room.ExpiresAt = &past
	assert.False(t, room.IsJoinable())
}
