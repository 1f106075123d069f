package schedule

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	CreateSlot(ctx context.Context, instructorID int, start, end string) (*Slot, error)
	GetByID(ctx context.Context, id int) (*Slot, error)
	GetByInstructorID(ctx context.Context, instructorID int, onlyOpen bool) ([]Slot, error)
	MarkBooked(ctx context.Context, id int) error
	Unbook(ctx context.Context, id int) error
}
