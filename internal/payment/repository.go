package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("payment not found")
	ErrSlotReserved = errors.New("slot already has a pending payment")
)

const paymentColumns = `
	id, student_id, instructor_id, session_id, slot_id, amount, currency,
	status, lesson_type, payment_method, gateway, gateway_order_id,
	gateway_payment_id, gateway_signature, failure_reason, extra_data,
	created_at, updated_at, completed_at`

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

func (r *repository) Save(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (
			student_id, instructor_id, session_id, slot_id, amount, currency,
			status, lesson_type, payment_method, gateway, gateway_order_id,
			gateway_payment_id, gateway_signature, failure_reason, extra_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.StudentID, p.InstructorID, p.SessionID, p.SlotID, p.Amount, p.Currency,
		p.Status, p.LessonType, p.PaymentMethod, p.Gateway, p.GatewayOrderID,
		p.GatewayPaymentID, p.GatewaySignature, p.FailureReason, p.ExtraData,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		// idx_payments_one_open_per_slot closes the check-then-insert race.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSlotReserved
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, p *Payment) error {
	query := `
		UPDATE payments
		SET session_id = $1, status = $2, payment_method = $3,
		    gateway_order_id = $4, gateway_payment_id = $5,
		    gateway_signature = $6, failure_reason = $7, extra_data = $8,
		    completed_at = $9, updated_at = NOW()
		WHERE id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		p.SessionID, p.Status, p.PaymentMethod,
		p.GatewayOrderID, p.GatewayPaymentID,
		p.GatewaySignature, p.FailureReason, p.ExtraData,
		p.CompletedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
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

func (r *repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1`

	var p Payment
	err := sqlx.GetContext(ctx, r.db, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE gateway_order_id = $1`

	var p Payment
	err := sqlx.GetContext(ctx, r.db, &p, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByStudentID(ctx context.Context, studentID int, status *Status, limit, offset int) ([]Payment, error) {
	return r.listByParty(ctx, "student_id", studentID, status, limit, offset)
}

func (r *repository) GetByInstructorID(ctx context.Context, instructorID int, status *Status, limit, offset int) ([]Payment, error) {
	return r.listByParty(ctx, "instructor_id", instructorID, status, limit, offset)
}

func (r *repository) listByParty(ctx context.Context, column string, id int, status *Status, limit, offset int) ([]Payment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE ` + column + ` = $1`
	args := []interface{}{id}

	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var payments []Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, args...); err != nil {
		return nil, err
	}

	return payments, nil
}

// GetPendingForSlot returns the open (pending or processing) payment holding
// the slot, or ErrNotFound.
func (r *repository) GetPendingForSlot(ctx context.Context, slotID int) (*Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE slot_id = $1 AND status IN ('pending', 'processing')
		ORDER BY created_at DESC
		LIMIT 1`

	var p Payment
	err := sqlx.GetContext(ctx, r.db, &p, query, slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetProcessingOlderThan(ctx context.Context, minutes int) ([]Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE status IN ('pending', 'processing')
		  AND created_at < NOW() - ($1 * INTERVAL '1 minute')
		ORDER BY created_at ASC`

	var payments []Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, minutes); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *repository) CountByStudentID(ctx context.Context, studentID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db, &count,
		`SELECT COUNT(*) FROM payments WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, err
	}
	return count, nil
}
