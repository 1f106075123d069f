package classroom

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	Save(ctx context.Context, r *Room) error
	Update(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id int) (*Room, error)
	GetBySessionID(ctx context.Context, sessionID int) (*Room, error)
	GetExpired(ctx context.Context) ([]Room, error)
}
