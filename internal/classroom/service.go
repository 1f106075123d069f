package classroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/metrics"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/session"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/user"
)

var (
	ErrNotParticipant = errors.New("user is not a participant of this session")
	ErrRoomNotOpen    = errors.New("room is not joinable")
)

// roomGrace keeps the provider room alive past the scheduled end so lessons
// can run over.
const roomGrace = 30 * time.Minute

type JoinInfo struct {
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomID   string `json:"room_id"`
	IsOwner  bool   `json:"is_owner"`
	UserName string `json:"user_name"`
}

type Service interface {
	EnsureRoomForSession(ctx context.Context, sessionID int) (*Room, error)
	GetJoinInfo(ctx context.Context, sessionID, userID int) (*JoinInfo, error)
	EndRoom(ctx context.Context, sessionID int) error
	ExpireStale(ctx context.Context) error
}

type service struct {
	repo     Repository
	provider Provider
	sessions session.Repository
	users    user.Repository
}

func NewService(repo Repository, provider Provider, sessions session.Repository, users user.Repository) Service {
	return &service{
		repo:     repo,
		provider: provider,
		sessions: sessions,
		users:    users,
	}
}

// EnsureRoomForSession is idempotent: an existing non-terminal room is
// returned as-is; a failed one gets a fresh provider room.
func (s *service) EnsureRoomForSession(ctx context.Context, sessionID int) (*Room, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}
	if existing != nil && !existing.Status.IsTerminal() {
		return existing, nil
	}

	room := NewRoom(sessionID, s.provider.Name())
	if err := s.repo.Save(ctx, room); err != nil {
		return nil, err
	}

	expiresAt := sess.EndTime.Add(roomGrace)
	providerRoom, err := s.provider.CreateRoom(ctx, fmt.Sprintf("session-%d", sessionID), expiresAt)
	if err != nil {
		if failErr := room.MarkFailed(err.Error()); failErr == nil {
			if updateErr := s.repo.Update(ctx, room); updateErr != nil {
				logger.Errorf("failed to persist room %d failure: %v", room.ID, updateErr)
			}
		}
		metrics.RecordClassroomRoom("failed")
		return nil, err
	}

	if err := room.MarkCreated(providerRoom.RoomID, providerRoom.URL, providerRoom.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}

	metrics.RecordClassroomRoom("created")
	return room, nil
}

// GetJoinInfo hands a participant a meeting token. The instructor joins as
// room owner; the first join activates the room.
func (s *service) GetJoinInfo(ctx context.Context, sessionID, userID int) (*JoinInfo, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != sess.StudentID && userID != sess.InstructorID {
		return nil, ErrNotParticipant
	}

	room, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !room.IsJoinable() {
		return nil, ErrRoomNotOpen
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	isOwner := userID == sess.InstructorID
	token, err := s.provider.MeetingToken(ctx, room.ProviderRoomID, u.Name, isOwner)
	if err != nil {
		return nil, err
	}

	if room.Status == RoomCreated {
		if err := room.MarkActive(); err == nil {
			if updateErr := s.repo.Update(ctx, room); updateErr != nil {
				logger.Errorf("failed to activate room %d: %v", room.ID, updateErr)
			}
		}
	}

	return &JoinInfo{
		URL:      room.URL,
		Token:    token,
		RoomID:   room.ProviderRoomID,
		IsOwner:  isOwner,
		UserName: u.Name,
	}, nil
}

func (s *service) EndRoom(ctx context.Context, sessionID int) error {
	room, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := room.MarkEnded(); err != nil {
		return err
	}

	// best-effort provider cleanup; the local state is authoritative
	if room.ProviderRoomID != "" {
		if err := s.provider.DeleteRoom(ctx, room.ProviderRoomID); err != nil {
			logger.Errorf("failed to delete provider room %s: %v", room.ProviderRoomID, err)
		}
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return err
	}

	metrics.RecordClassroomRoom("ended")
	return nil
}

// ExpireStale closes rooms whose expiry has passed without an explicit end.
func (s *service) ExpireStale(ctx context.Context) error {
	expired, err := s.repo.GetExpired(ctx)
	if err != nil {
		return err
	}

	for i := range expired {
		room := &expired[i]
		if err := room.MarkExpired(); err != nil {
			logger.Errorf("room %d cannot expire from %s: %v", room.ID, room.Status, err)
			continue
		}
		if err := s.repo.Update(ctx, room); err != nil {
			logger.Errorf("failed to expire room %d: %v", room.ID, err)
			continue
		}
		metrics.RecordClassroomRoom("expired")
	}

	return nil
}
