package booking

import (
	"errors"
	"time"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/gateway"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/payment"
)

var (
	ErrSlotUnavailable       = errors.New("slot is not available")
	ErrInstructorNotVerified = errors.New("instructor is not verified")
	ErrRateNotSet            = errors.New("instructor has not set an hourly rate")
	ErrInvalidSignature      = errors.New("invalid payment signature")
	ErrAlreadyCancelled      = errors.New("booking already cancelled or refunded")
	ErrCannotCancel          = errors.New("booking cannot be cancelled in its current status")
	ErrNotYourBooking        = errors.New("booking belongs to another user")
)

type InitiateRequest struct {
	InstructorID int    `json:"instructor_id" binding:"required"`
	SlotID       int    `json:"slot_id" binding:"required"`
	LessonType   string `json:"lesson_type" binding:"required,oneof=trial regular"`
}

type ConfirmRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// CheckoutResponse is what the client needs to open the gateway checkout.
type CheckoutResponse struct {
	PaymentID int            `json:"payment_id"`
	Order     *gateway.Order `json:"order"`
}

type ConfirmResult struct {
	Payment   *payment.Payment `json:"payment"`
	SessionID int              `json:"session_id"`
	RoomURL   string           `json:"room_url,omitempty"`
}

// CancelResult reports the outcome of a cancellation, including the
// partial-success case where the lesson is cancelled but the refund is not
// yet confirmed.
type CancelResult struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	RefundInitiated bool             `json:"refund_initiated"`
	Payment         *payment.Payment `json:"payment,omitempty"`
}

// BookingStatus is the read-only projection for status polling.
type BookingStatus struct {
	PaymentID     int        `json:"payment_id"`
	Status        string     `json:"status"`
	SlotID        int        `json:"slot_id"`
	SessionID     *int       `json:"session_id,omitempty"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	LessonType    string     `json:"lesson_type"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
