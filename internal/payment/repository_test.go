package payment

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupPaymentMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func paymentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "instructor_id", "session_id", "slot_id", "amount",
		"currency", "status", "lesson_type", "payment_method", "gateway",
		"gateway_order_id", "gateway_payment_id", "gateway_signature",
		"failure_reason", "extra_data", "created_at", "updated_at", "completed_at",
	})
}

func TestSave_AssignsID(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO payments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(42, time.Now(), time.Now()))

	p := &Payment{
		StudentID:    1,
		InstructorID: 2,
		SlotID:       10,
		Amount:       decimal.RequireFromString("500"),
		Currency:     "INR",
		Status:       StatusPending,
		LessonType:   LessonTrial,
		Gateway:      "razorpay",
	}

	err := repo.Save(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 42, p.ID)
}

func TestSave_SlotAlreadyReserved(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_payments_one_open_per_slot"})

	p := &Payment{StudentID: 1, InstructorID: 2, SlotID: 10,
		Amount: decimal.RequireFromString("500"), Currency: "INR",
		Status: StatusPending, LessonType: LessonTrial, Gateway: "razorpay"}

	err := repo.Save(context.Background(), p)
	require.ErrorIs(t, err, ErrSlotReserved)
}

func TestGetByGatewayOrderID_NotFound(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery("SELECT(.|\n)+FROM payments WHERE gateway_order_id").
		WithArgs("order_missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByGatewayOrderID(context.Background(), "order_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetPendingForSlot(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("status IN ('pending', 'processing')")).
		WithArgs(10).
		WillReturnRows(paymentRows().AddRow(
			5, 1, 2, nil, 10, "500", "INR", "pending", "trial", "", "razorpay",
			"", "", "", "", []byte(`{}`), now, now, nil))

	p, err := repo.GetPendingForSlot(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 5, p.ID)
	require.Equal(t, StatusPending, p.Status)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))

	p := &Payment{ID: 999, Status: StatusCancelled}
	err := repo.Update(context.Background(), p)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetProcessingOlderThan(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery("INTERVAL '1 minute'").
		WithArgs(30).
		WillReturnRows(paymentRows().AddRow(
			7, 1, 2, nil, 11, "750.50", "INR", "processing", "regular", "", "razorpay",
			"order_7", "", "", "", []byte(`{}`), created, created, nil))

	stale, err := repo.GetProcessingOlderThan(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "order_7", stale[0].GatewayOrderID)
}

func TestCountByStudentID(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM payments WHERE student_id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByStudentID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, count)
}
