package payment

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// WithTx returns a repository bound to the given transaction. A nil tx
	// returns the receiver unchanged.
	WithTx(tx *sqlx.Tx) Repository

	Save(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error)
	GetByStudentID(ctx context.Context, studentID int, status *Status, limit, offset int) ([]Payment, error)
	GetByInstructorID(ctx context.Context, instructorID int, status *Status, limit, offset int) ([]Payment, error)
	GetPendingForSlot(ctx context.Context, slotID int) (*Payment, error)
	GetProcessingOlderThan(ctx context.Context, minutes int) ([]Payment, error)
	CountByStudentID(ctx context.Context, studentID int) (int, error)
}
