package schedule

import "time"

// Slot is one bookable window in an instructor's calendar.
type Slot struct {
	ID           int       `db:"id" json:"id"`
	InstructorID int       `db:"instructor_id" json:"instructor_id"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
	IsBooked     bool      `db:"is_booked" json:"is_booked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (s *Slot) IsPast() bool {
	return s.StartTime.Before(time.Now())
}

type CreateSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}
