package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/classroom"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/db"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/gateway"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/metrics"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/payment"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/schedule"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/session"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/user"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/wallet"
)

// Notifier is the slice of the email service the booking flow needs.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to, name, instructorName, lessonType string, startTime time.Time, roomURL string) error
	SendBookingCancellation(ctx context.Context, to, name, lessonType string, startTime time.Time, refunded bool) error
}

type Service interface {
	InitiateBooking(ctx context.Context, studentID int, req InitiateRequest) (*CheckoutResponse, error)
	ConfirmBooking(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
	CancelBooking(ctx context.Context, paymentID, userID int, reason string) (*CancelResult, error)
	GetBookingStatus(ctx context.Context, paymentID int) (*BookingStatus, error)
	GetBookingStatusByOrder(ctx context.Context, orderID string) (*BookingStatus, error)
	ListBookings(ctx context.Context, studentID int, status *payment.Status, limit, offset int) ([]payment.Payment, bool, error)
	ListReceivedBookings(ctx context.Context, instructorID int, status *payment.Status, limit, offset int) ([]payment.Payment, bool, error)
}

type service struct {
	payments   payment.Repository
	slots      schedule.Repository
	sessions   session.Repository
	users      user.Repository
	wallets    wallet.Repository
	gw         gateway.Gateway
	classrooms classroom.Service
	notifier   Notifier
	runner     db.TxRunner
	trialPrice money.Money
	currency   string
}

func NewService(
	payments payment.Repository,
	slots schedule.Repository,
	sessions session.Repository,
	users user.Repository,
	wallets wallet.Repository,
	gw gateway.Gateway,
	classrooms classroom.Service,
	notifier Notifier,
	runner db.TxRunner,
	trialPrice money.Money,
) Service {
	return &service{
		payments:   payments,
		slots:      slots,
		sessions:   sessions,
		users:      users,
		wallets:    wallets,
		gw:         gw,
		classrooms: classrooms,
		notifier:   notifier,
		runner:     runner,
		trialPrice: trialPrice,
		currency:   trialPrice.Currency(),
	}
}

// InitiateBooking opens a payment for a slot and returns the gateway
// checkout details. A gateway failure leaves the payment in PENDING.
func (s *service) InitiateBooking(ctx context.Context, studentID int, req InitiateRequest) (*CheckoutResponse, error) {
	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.InstructorID != req.InstructorID || slot.IsBooked || slot.IsPast() {
		return nil, ErrSlotUnavailable
	}

	if _, err := s.payments.GetPendingForSlot(ctx, req.SlotID); err == nil {
		return nil, ErrSlotUnavailable
	} else if !errors.Is(err, payment.ErrNotFound) {
		return nil, err
	}

	instructor, err := s.users.FindByID(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}
	if !instructor.IsVerified {
		return nil, ErrInstructorNotVerified
	}

	amount, err := s.lessonPrice(instructor, payment.LessonType(req.LessonType))
	if err != nil {
		return nil, err
	}

	intent := payment.Intent{
		StudentID:    studentID,
		InstructorID: req.InstructorID,
		SlotID:       req.SlotID,
		Amount:       amount,
		LessonType:   payment.LessonType(req.LessonType),
	}

	p, err := payment.NewFromIntent(intent, s.gw.Name())
	if err != nil {
		return nil, err
	}

	if err := s.payments.Save(ctx, p); err != nil {
		if errors.Is(err, payment.ErrSlotReserved) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	order, err := s.gw.CreateOrder(ctx, gateway.OrderRequest{
		Amount:  amount,
		Receipt: fmt.Sprintf("payment_%d", p.ID),
		Notes: map[string]interface{}{
			"payment_id":  p.ID,
			"slot_id":     slot.ID,
			"lesson_type": req.LessonType,
		},
		CustomerName:    student.Name,
		CustomerEmail:   student.Email,
		CustomerContact: student.Phone,
	})
	if err != nil {
		// payment stays PENDING; the sweeper reclaims the slot later
		return nil, err
	}

	if err := p.MarkProcessing(order.OrderID); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	metrics.RecordPayment("initiated", string(p.LessonType))
	return &CheckoutResponse{PaymentID: p.ID, Order: order}, nil
}

func (s *service) lessonPrice(instructor *user.User, lessonType payment.LessonType) (money.Money, error) {
	if lessonType == payment.LessonTrial {
		return s.trialPrice, nil
	}
	if instructor.HourlyRate == nil {
		return money.Money{}, ErrRateNotSet
	}
	return money.New(*instructor.HourlyRate, s.currency)
}

// ConfirmBooking verifies the gateway callback and, in one transaction,
// completes the payment, creates the session, books the slot and credits the
// instructor's wallet. Room creation and email happen after commit.
func (s *service) ConfirmBooking(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	p, err := s.payments.GetByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	verification := s.gw.VerifyPayment(req.OrderID, req.PaymentID, req.Signature)
	if !verification.IsValid {
		if failErr := p.Fail("Invalid payment signature"); failErr != nil {
			return nil, failErr
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return nil, err
		}
		metrics.RecordPayment("failed", string(p.LessonType))
		return nil, ErrInvalidSignature
	}

	var sess *session.Session
	err = s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		payments := s.payments.WithTx(tx)
		slots := s.slots.WithTx(tx)
		sessions := s.sessions.WithTx(tx)
		wallets := s.wallets.WithTx(tx)

		slot, err := slots.GetByID(ctx, p.SlotID)
		if err != nil {
			return err
		}

		sess = &session.Session{
			StudentID:    p.StudentID,
			InstructorID: p.InstructorID,
			SlotID:       p.SlotID,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
			Status:       session.StatusScheduled,
		}
		if err := sessions.Save(ctx, sess); err != nil {
			return err
		}

		if err := slots.MarkBooked(ctx, slot.ID); err != nil {
			return err
		}

		if err := p.Complete(req.PaymentID, req.Signature, verification.PaymentMethod); err != nil {
			return err
		}
		p.AttachSession(sess.ID)
		if err := payments.Update(ctx, p); err != nil {
			return err
		}

		w, err := wallets.GetByInstructorIDForUpdate(ctx, p.InstructorID)
		if err != nil {
			return err
		}
		m, err := p.Money()
		if err != nil {
			return err
		}
		deposit, err := w.Deposit(m, "session", &sess.ID, fmt.Sprintf("Earnings for session %d", sess.ID))
		if err != nil {
			return err
		}
		if err := wallets.Update(ctx, w); err != nil {
			return err
		}
		return wallets.SaveTransaction(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment("completed", string(p.LessonType))
	metrics.RecordWalletDeposit()

	result := &ConfirmResult{Payment: p, SessionID: sess.ID}

	// best-effort: the booking stands even if the room or email fails
	if room, roomErr := s.classrooms.EnsureRoomForSession(ctx, sess.ID); roomErr != nil {
		logger.Errorf("classroom creation for session %d failed: %v", sess.ID, roomErr)
	} else {
		result.RoomURL = room.URL
	}

	s.sendConfirmation(ctx, p, sess, result.RoomURL)

	return result, nil
}

func (s *service) sendConfirmation(ctx context.Context, p *payment.Payment, sess *session.Session, roomURL string) {
	student, err := s.users.FindByID(ctx, p.StudentID)
	if err != nil {
		logger.Errorf("confirmation email skipped, student %d lookup failed: %v", p.StudentID, err)
		return
	}
	instructor, err := s.users.FindByID(ctx, p.InstructorID)
	if err != nil {
		logger.Errorf("confirmation email skipped, instructor %d lookup failed: %v", p.InstructorID, err)
		return
	}

	if err := s.notifier.SendBookingConfirmation(ctx, student.Email, student.Name,
		instructor.Name, string(p.LessonType), sess.StartTime, roomURL); err != nil {
		logger.Errorf("failed to queue confirmation email for payment %d: %v", p.ID, err)
	}
}

// CancelBooking dispatches on the payment status. For a paid booking the
// session is released first; a refund failure is folded into a partial
// success, never a hard error.
func (s *service) CancelBooking(ctx context.Context, paymentID, userID int, reason string) (*CancelResult, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if userID != p.StudentID && userID != p.InstructorID {
		return nil, ErrNotYourBooking
	}

	switch p.Status {
	case payment.StatusPending, payment.StatusProcessing:
		if err := p.Cancel(); err != nil {
			return nil, err
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return nil, err
		}
		metrics.RecordPayment("cancelled", string(p.LessonType))
		return &CancelResult{
			Success: true,
			Message: "booking cancelled, no payment was taken",
			Payment: p,
		}, nil

	case payment.StatusCompleted:
		return s.cancelPaidBooking(ctx, p, userID, reason)

	case payment.StatusCancelled, payment.StatusRefunded:
		return nil, ErrAlreadyCancelled

	default:
		return nil, fmt.Errorf("%w: %s", ErrCannotCancel, p.Status)
	}
}

func (s *service) cancelPaidBooking(ctx context.Context, p *payment.Payment, userID int, reason string) (*CancelResult, error) {
	var sess *session.Session

	err := s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		slots := s.slots.WithTx(tx)
		sessions := s.sessions.WithTx(tx)

		var err error
		if p.SessionID != nil {
			sess, err = sessions.GetByID(ctx, *p.SessionID)
		} else {
			// payments completed before the session link existed
			sess, err = sessions.GetBySlotID(ctx, p.SlotID)
			if errors.Is(err, session.ErrNotFound) {
				sess, err = nil, nil
			}
		}
		if err != nil {
			return err
		}

		if sess != nil && sess.CanBeCancelled() {
			if err := sess.Cancel(userID, reason); err != nil {
				return err
			}
			if err := sessions.Update(ctx, sess); err != nil {
				return err
			}
		}

		return slots.Unbook(ctx, p.SlotID)
	})
	if err != nil {
		return nil, err
	}

	if sess != nil {
		if endErr := s.classrooms.EndRoom(ctx, sess.ID); endErr != nil && !errors.Is(endErr, classroom.ErrRoomNotFound) {
			logger.Errorf("failed to end classroom for session %d: %v", sess.ID, endErr)
		}
	}

	m, err := p.Money()
	if err != nil {
		return nil, err
	}

	refund := s.gw.RefundPayment(ctx, p.GatewayPaymentID, &m, map[string]interface{}{
		"payment_id": p.ID,
		"reason":     reason,
	})

	result := &CancelResult{Success: true, Payment: p}
	if refund.IsSuccess {
		if err := p.Refund(refund.RefundID); err != nil {
			return nil, err
		}
		metrics.RecordRefund("initiated")
		result.RefundInitiated = true
		result.Message = "booking cancelled and refund initiated"
	} else {
		p.RecordRefundFailure(refund.ErrorMessage)
		metrics.RecordRefund("failed")
		result.RefundInitiated = false
		result.Message = "booking cancelled; the refund could not be initiated and will be processed manually"
	}

	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	s.sendCancellation(ctx, p, sess, result.RefundInitiated)

	return result, nil
}

func (s *service) sendCancellation(ctx context.Context, p *payment.Payment, sess *session.Session, refunded bool) {
	student, err := s.users.FindByID(ctx, p.StudentID)
	if err != nil {
		logger.Errorf("cancellation email skipped, student %d lookup failed: %v", p.StudentID, err)
		return
	}

	startTime := time.Now()
	if sess != nil {
		startTime = sess.StartTime
	}

	if err := s.notifier.SendBookingCancellation(ctx, student.Email, student.Name,
		string(p.LessonType), startTime, refunded); err != nil {
		logger.Errorf("failed to queue cancellation email for payment %d: %v", p.ID, err)
	}
}

// GetBookingStatus returns (nil, nil) when the payment does not exist, so
// callers can tell absence apart from a lookup failure.
func (s *service) GetBookingStatus(ctx context.Context, paymentID int) (*BookingStatus, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if errors.Is(err, payment.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return projectStatus(p), nil
}

func (s *service) GetBookingStatusByOrder(ctx context.Context, orderID string) (*BookingStatus, error) {
	p, err := s.payments.GetByGatewayOrderID(ctx, orderID)
	if errors.Is(err, payment.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return projectStatus(p), nil
}

func projectStatus(p *payment.Payment) *BookingStatus {
	return &BookingStatus{
		PaymentID:     p.ID,
		Status:        string(p.Status),
		SlotID:        p.SlotID,
		SessionID:     p.SessionID,
		Amount:        p.Amount.StringFixed(2),
		Currency:      p.Currency,
		LessonType:    string(p.LessonType),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
		CompletedAt:   p.CompletedAt,
	}
}

func (s *service) ListBookings(ctx context.Context, studentID int, status *payment.Status, limit, offset int) ([]payment.Payment, bool, error) {
	if limit <= 0 {
		limit = 20
	}

	bookings, err := s.payments.GetByStudentID(ctx, studentID, status, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(bookings) > limit
	if hasMore {
		bookings = bookings[:limit]
	}

	return bookings, hasMore, nil
}

// ListReceivedBookings is the instructor-side view of the same history.
func (s *service) ListReceivedBookings(ctx context.Context, instructorID int, status *payment.Status, limit, offset int) ([]payment.Payment, bool, error) {
	if limit <= 0 {
		limit = 20
	}

	bookings, err := s.payments.GetByInstructorID(ctx, instructorID, status, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(bookings) > limit
	if hasMore {
		bookings = bookings[:limit]
	}

	return bookings, hasMore, nil
}
