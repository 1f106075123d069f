package classroom

import (
	"context"
	"errors"
	"time"
)

var ErrProviderUnavailable = errors.New("video provider request failed")

// ProviderRoom is what a video provider hands back for a created room.
type ProviderRoom struct {
	RoomID    string
	URL       string
	ExpiresAt time.Time
}

// Provider is the video-conferencing contract. One room per session.
type Provider interface {
	CreateRoom(ctx context.Context, name string, expiresAt time.Time) (*ProviderRoom, error)
	DeleteRoom(ctx context.Context, roomID string) error
	MeetingToken(ctx context.Context, roomID, userName string, isOwner bool) (string, error)
	Name() string
}
