package classroom

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrRoomNotFound = errors.New("classroom room not found")

const roomColumns = `
	id, session_id, provider, provider_room_id, url, status, failure_reason,
	expires_at, created_at, updated_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Save(ctx context.Context, room *Room) error {
	query := `
		INSERT INTO classroom_rooms (session_id, provider, provider_room_id, url, status, failure_reason, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		room.SessionID, room.Provider, room.ProviderRoomID, room.URL,
		room.Status, room.FailureReason, room.ExpiresAt,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save classroom room: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, room *Room) error {
	query := `
		UPDATE classroom_rooms
		SET provider_room_id = $1, url = $2, status = $3, failure_reason = $4,
		    expires_at = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		room.ProviderRoomID, room.URL, room.Status, room.FailureReason,
		room.ExpiresAt, room.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRoomNotFound
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Room, error) {
	return r.getRoom(ctx, `SELECT`+roomColumns+` FROM classroom_rooms WHERE id = $1`, id)
}

func (r *repository) GetBySessionID(ctx context.Context, sessionID int) (*Room, error) {
	return r.getRoom(ctx, `SELECT`+roomColumns+` FROM classroom_rooms WHERE session_id = $1`, sessionID)
}

func (r *repository) getRoom(ctx context.Context, query string, arg interface{}) (*Room, error) {
	var room Room
	err := sqlx.GetContext(ctx, r.db, &room, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetExpired(ctx context.Context) ([]Room, error) {
	query := `SELECT` + roomColumns + `
		FROM classroom_rooms
		WHERE status IN ('created', 'active') AND expires_at < NOW()
		ORDER BY expires_at ASC`

	var rooms []Room
	if err := sqlx.SelectContext(ctx, r.db, &rooms, query); err != nil {
		return nil, err
	}

	return rooms, nil
}
