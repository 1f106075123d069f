package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("session not found")

const sessionColumns = `
	id, student_id, instructor_id, slot_id, start_time, end_time, status,
	cancelled_by, cancel_reason, created_at, cancelled_at`

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

func (r *repository) Save(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (student_id, instructor_id, slot_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.StudentID, s.InstructorID, s.SlotID, s.StartTime, s.EndTime, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, s *Session) error {
	query := `
		UPDATE sessions
		SET status = $1, cancelled_by = $2, cancel_reason = $3, cancelled_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		s.Status, s.CancelledBy, s.CancelReason, s.CancelledAt, s.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE id = $1`

	var s Session
	err := sqlx.GetContext(ctx, r.db, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetBySlotID(ctx context.Context, slotID int) (*Session, error) {
	query := `SELECT` + sessionColumns + ` FROM sessions WHERE slot_id = $1 ORDER BY created_at DESC LIMIT 1`

	var s Session
	err := sqlx.GetContext(ctx, r.db, &s, query, slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetByStudentID(ctx context.Context, studentID int, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + sessionColumns + `
		FROM sessions
		WHERE student_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3`

	var sessions []Session
	if err := sqlx.SelectContext(ctx, r.db, &sessions, query, studentID, limit, offset); err != nil {
		return nil, err
	}

	return sessions, nil
}
