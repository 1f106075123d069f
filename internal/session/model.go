package session

import (
	"errors"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrNotCancellable = errors.New("session cannot be cancelled")

// Session is one scheduled lesson between a student and an instructor.
type Session struct {
	ID           int        `db:"id" json:"id"`
	StudentID    int        `db:"student_id" json:"student_id"`
	InstructorID int        `db:"instructor_id" json:"instructor_id"`
	SlotID       int        `db:"slot_id" json:"slot_id"`
	StartTime    time.Time  `db:"start_time" json:"start_time"`
	EndTime      time.Time  `db:"end_time" json:"end_time"`
	Status       Status     `db:"status" json:"status"`
	CancelledBy  *int       `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelReason string     `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// CanBeCancelled is true only while the lesson is scheduled and has not
// started yet.
func (s *Session) CanBeCancelled() bool {
	return s.Status == StatusScheduled && s.StartTime.After(time.Now())
}

func (s *Session) Cancel(cancelledBy int, reason string) error {
	if !s.CanBeCancelled() {
		return ErrNotCancellable
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledBy = &cancelledBy
	s.CancelReason = reason
	s.CancelledAt = &now
	return nil
}
