package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

type Status string
type LessonType string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"

	LessonTrial   LessonType = "trial"
	LessonRegular LessonType = "regular"
)

var (
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrSelfBooking       = errors.New("student and instructor must differ")
	ErrInvalidIntent     = errors.New("invalid payment intent")
)

// validTransitions is the single source of truth for the payment lifecycle.
// Terminal states (failed, refunded, cancelled) have no outgoing edges.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
}

func (s Status) canTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// ExtraData is a free-form JSONB column.
type ExtraData map[string]interface{}

func (e ExtraData) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e)
}

func (e *ExtraData) Scan(src interface{}) error {
	if src == nil {
		*e = ExtraData{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ExtraData", src)
	}
	return json.Unmarshal(b, e)
}

// Intent is the validated input for creating a payment. It is checked before
// anything is persisted.
type Intent struct {
	StudentID    int
	InstructorID int
	SlotID       int
	Amount       money.Money
	LessonType   LessonType
}

func (i Intent) Validate() error {
	if i.StudentID <= 0 || i.InstructorID <= 0 || i.SlotID <= 0 {
		return fmt.Errorf("%w: ids must be positive", ErrInvalidIntent)
	}
	if i.StudentID == i.InstructorID {
		return ErrSelfBooking
	}
	if i.Amount.IsZero() {
		return fmt.Errorf("%w: amount is required", ErrInvalidIntent)
	}
	if i.LessonType != LessonTrial && i.LessonType != LessonRegular {
		return fmt.Errorf("%w: unknown lesson type %q", ErrInvalidIntent, i.LessonType)
	}
	return nil
}

// Payment is one purchase attempt for one lesson slot. State changes go
// through the transition methods; persistence is the caller's job.
type Payment struct {
	ID               int             `db:"id" json:"id"`
	StudentID        int             `db:"student_id" json:"student_id"`
	InstructorID     int             `db:"instructor_id" json:"instructor_id"`
	SessionID        *int            `db:"session_id" json:"session_id,omitempty"`
	SlotID           int             `db:"slot_id" json:"slot_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Currency         string          `db:"currency" json:"currency"`
	Status           Status          `db:"status" json:"status"`
	LessonType       LessonType      `db:"lesson_type" json:"lesson_type"`
	PaymentMethod    string          `db:"payment_method" json:"payment_method,omitempty"`
	Gateway          string          `db:"gateway" json:"gateway"`
	GatewayOrderID   string          `db:"gateway_order_id" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string          `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewaySignature string          `db:"gateway_signature" json:"-"`
	FailureReason    string          `db:"failure_reason" json:"failure_reason,omitempty"`
	ExtraData        ExtraData       `db:"extra_data" json:"extra_data,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

func NewFromIntent(intent Intent, gatewayName string) (*Payment, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	return &Payment{
		StudentID:    intent.StudentID,
		InstructorID: intent.InstructorID,
		SlotID:       intent.SlotID,
		Amount:       intent.Amount.Amount(),
		Currency:     intent.Amount.Currency(),
		Status:       StatusPending,
		LessonType:   intent.LessonType,
		Gateway:      gatewayName,
		ExtraData:    ExtraData{},
	}, nil
}

func (p *Payment) transition(target Status) error {
	if !p.Status.canTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, target)
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	return nil
}

// MarkProcessing records the gateway order and moves the payment out of
// PENDING.
func (p *Payment) MarkProcessing(gatewayOrderID string) error {
	if err := p.transition(StatusProcessing); err != nil {
		return err
	}
	p.GatewayOrderID = gatewayOrderID
	return nil
}

// Complete records a verified gateway payment.
func (p *Payment) Complete(gatewayPaymentID, signature, method string) error {
	if err := p.transition(StatusCompleted); err != nil {
		return err
	}
	p.GatewayPaymentID = gatewayPaymentID
	p.GatewaySignature = signature
	p.PaymentMethod = method
	now := time.Now()
	p.CompletedAt = &now
	return nil
}

func (p *Payment) Fail(reason string) error {
	if err := p.transition(StatusFailed); err != nil {
		return err
	}
	p.FailureReason = reason
	return nil
}

// Cancel is valid only from PENDING or PROCESSING.
func (p *Payment) Cancel() error {
	return p.transition(StatusCancelled)
}

// Refund is valid only from COMPLETED.
func (p *Payment) Refund(refundID string) error {
	if err := p.transition(StatusRefunded); err != nil {
		return err
	}
	p.setExtra("refund_id", refundID)
	return nil
}

func (p *Payment) AttachSession(sessionID int) {
	p.SessionID = &sessionID
}

func (p *Payment) setExtra(key string, value interface{}) {
	if p.ExtraData == nil {
		p.ExtraData = ExtraData{}
	}
	p.ExtraData[key] = value
}

// RecordRefundFailure keeps the payment COMPLETED but remembers why the
// refund did not go through.
func (p *Payment) RecordRefundFailure(message string) {
	p.setExtra("refund_error", message)
	p.setExtra("refund_failed_at", time.Now().UTC().Format(time.RFC3339))
	p.UpdatedAt = time.Now()
}

func (p *Payment) Money() (money.Money, error) {
	return money.New(p.Amount, p.Currency)
}
