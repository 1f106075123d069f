package classroom

import (
	"errors"
	"fmt"
	"time"
)

type RoomStatus string

const (
	RoomPending RoomStatus = "pending"
	RoomCreated RoomStatus = "created"
	RoomActive  RoomStatus = "active"
	RoomEnded   RoomStatus = "ended"
	RoomExpired RoomStatus = "expired"
	RoomFailed  RoomStatus = "failed"
)

var ErrInvalidRoomTransition = errors.New("invalid room status transition")

// roomTransitions is the allow-list for the room lifecycle. ended, expired
// and failed are terminal.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomPending: {RoomCreated, RoomFailed},
	RoomCreated: {RoomActive, RoomEnded, RoomExpired, RoomFailed},
	RoomActive:  {RoomEnded, RoomExpired},
}

func (s RoomStatus) canTransitionTo(target RoomStatus) bool {
	for _, allowed := range roomTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s RoomStatus) IsTerminal() bool {
	return len(roomTransitions[s]) == 0
}

// Room links a tutoring session to a video-provider room.
type Room struct {
	ID             int        `db:"id" json:"id"`
	SessionID      int        `db:"session_id" json:"session_id"`
	Provider       string     `db:"provider" json:"provider"`
	ProviderRoomID string     `db:"provider_room_id" json:"provider_room_id,omitempty"`
	URL            string     `db:"url" json:"url,omitempty"`
	Status         RoomStatus `db:"status" json:"status"`
	FailureReason  string     `db:"failure_reason" json:"failure_reason,omitempty"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

func NewRoom(sessionID int, provider string) *Room {
	return &Room{
		SessionID: sessionID,
		Provider:  provider,
		Status:    RoomPending,
	}
}

func (r *Room) transition(target RoomStatus) error {
	if !r.Status.canTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidRoomTransition, r.Status, target)
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}

// MarkCreated records the provider's room handle.
func (r *Room) MarkCreated(providerRoomID, url string, expiresAt time.Time) error {
	if err := r.transition(RoomCreated); err != nil {
		return err
	}
	r.ProviderRoomID = providerRoomID
	r.URL = url
	r.ExpiresAt = &expiresAt
	return nil
}

func (r *Room) MarkActive() error {
	return r.transition(RoomActive)
}

func (r *Room) MarkEnded() error {
	return r.transition(RoomEnded)
}

func (r *Room) MarkExpired() error {
	return r.transition(RoomExpired)
}

func (r *Room) MarkFailed(reason string) error {
	if err := r.transition(RoomFailed); err != nil {
		return err
	}
	r.FailureReason = reason
	return nil
}

// IsJoinable is true while the provider room exists and has not ended.
func (r *Room) IsJoinable() bool {
	if r.Status != RoomCreated && r.Status != RoomActive {
		return false
	}
	if r.ExpiresAt != nil && r.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
