package session

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	Save(ctx context.Context, s *Session) error
	Update(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id int) (*Session, error)
	GetBySlotID(ctx context.Context, slotID int) (*Session, error)
	GetByStudentID(ctx context.Context, studentID int, limit, offset int) ([]Session, error)
}
