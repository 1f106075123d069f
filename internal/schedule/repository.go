package schedule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotAlreadyBooked = errors.New("slot already booked")
)

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

func (r *repository) CreateSlot(ctx context.Context, instructorID int, start, end string) (*Slot, error) {
	query := `
		INSERT INTO booking_slots (instructor_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, instructor_id, start_time, end_time, is_booked, created_at
	`

	var slot Slot
	err := sqlx.GetContext(ctx, r.db, &slot, query, instructorID, start, end)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Slot, error) {
	query := `
		SELECT id, instructor_id, start_time, end_time, is_booked, created_at
		FROM booking_slots
		WHERE id = $1
	`

	var slot Slot
	err := sqlx.GetContext(ctx, r.db, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetByInstructorID(ctx context.Context, instructorID int, onlyOpen bool) ([]Slot, error) {
	query := `
		SELECT id, instructor_id, start_time, end_time, is_booked, created_at
		FROM booking_slots
		WHERE instructor_id = $1
	`
	if onlyOpen {
		query += ` AND is_booked = FALSE AND start_time > NOW()`
	}
	query += ` ORDER BY start_time ASC`

	var slots []Slot
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, instructorID); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) MarkBooked(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE booking_slots SET is_booked = TRUE WHERE id = $1 AND is_booked = FALSE`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSlotAlreadyBooked
	}

	return nil
}

func (r *repository) Unbook(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE booking_slots SET is_booked = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSlotNotFound
	}

	return nil
}
