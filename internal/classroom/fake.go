package classroom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FakeProvider is an in-memory Provider for tests and local development.
type FakeProvider struct {
	mu    sync.Mutex
	rooms map[string]*ProviderRoom

	FailCreate bool
	FailToken  bool
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{rooms: make(map[string]*ProviderRoom)}
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) CreateRoom(ctx context.Context, name string, expiresAt time.Time) (*ProviderRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailCreate {
		return nil, fmt.Errorf("%w: create disabled", ErrProviderUnavailable)
	}

	roomID := "room_" + uuid.NewString()[:8]
	room := &ProviderRoom{
		RoomID:    roomID,
		URL:       "https://fake.example/" + name,
		ExpiresAt: expiresAt,
	}
	f.rooms[roomID] = room
	return room, nil
}

func (f *FakeProvider) DeleteRoom(ctx context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rooms[roomID]; !ok {
		return fmt.Errorf("%w: unknown room %s", ErrProviderUnavailable, roomID)
	}
	delete(f.rooms, roomID)
	return nil
}

func (f *FakeProvider) MeetingToken(ctx context.Context, roomID, userName string, isOwner bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailToken {
		return "", fmt.Errorf("%w: tokens disabled", ErrProviderUnavailable)
	}
	if _, ok := f.rooms[roomID]; !ok {
		return "", fmt.Errorf("%w: unknown room %s", ErrProviderUnavailable, roomID)
	}

	return fmt.Sprintf("tok_%s_%s_%t", roomID, userName, isOwner), nil
}

// RoomCount reports how many provider rooms are live.
func (f *FakeProvider) RoomCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}
