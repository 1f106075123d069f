package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

func trialIntent(t *testing.T) Intent {
	t.Helper()
	amount, err := money.NewFromString("500", "INR")
	require.NoError(t, err)
	return Intent{
		StudentID:    1,
		InstructorID: 2,
		SlotID:       10,
		Amount:       amount,
		LessonType:   LessonTrial,
	}
}

func TestIntentValidate(t *testing.T) {
	amount, _ := money.NewFromString("500", "INR")

	tests := []struct {
		name    string
		mutate  func(*Intent)
		wantErr error
	}{
		{"valid", func(i *Intent) {}, nil},
		{"self booking", func(i *Intent) { i.InstructorID = i.StudentID }, ErrSelfBooking},
		{"zero student", func(i *Intent) { i.StudentID = 0 }, ErrInvalidIntent},
		{"negative slot", func(i *Intent) { i.SlotID = -1 }, ErrInvalidIntent},
		{"missing amount", func(i *Intent) { i.Amount = money.Money{} }, ErrInvalidIntent},
		{"bad lesson type", func(i *Intent) { i.LessonType = "weekly" }, ErrInvalidIntent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := Intent{StudentID: 1, InstructorID: 2, SlotID: 10, Amount: amount, LessonType: LessonRegular}
			tt.mutate(&intent)
			err := intent.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFromIntent(t *testing.T) {
	p, err := NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, "500", p.Amount.String())
	assert.Equal(t, LessonTrial, p.LessonType)
	assert.Nil(t, p.SessionID)
}

func TestStatusGraph(t *testing.T) {
	all := []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled}

	allowed := map[Status]map[Status]bool{
		StatusPending:    {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusCompleted: true, StatusFailed: true, StatusCancelled: true},
		StatusCompleted:  {StatusRefunded: true},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.canTransitionTo(to)
			want := allowed[from][to]
			assert.Equalf(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	p, err := NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, err)

	require.NoError(t, p.MarkProcessing("order_abc"))
	assert.Equal(t, StatusProcessing, p.Status)
	assert.Equal(t, "order_abc", p.GatewayOrderID)

	require.NoError(t, p.Complete("pay_xyz", "sig", "upi"))
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, "pay_xyz", p.GatewayPaymentID)
	assert.Equal(t, "upi", p.PaymentMethod)
	assert.NotNil(t, p.CompletedAt)

	require.NoError(t, p.Refund("rfnd_1"))
	assert.Equal(t, StatusRefunded, p.Status)
	assert.Equal(t, "rfnd_1", p.ExtraData["refund_id"])
}

func TestCancel_OnlyFromOpenStates(t *testing.T) {
	p, _ := NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, p.Cancel())

	p, _ = NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, p.MarkProcessing("order_1"))
	require.NoError(t, p.Cancel())

	p, _ = NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, p.MarkProcessing("order_2"))
	require.NoError(t, p.Complete("pay_1", "sig", "card"))
	err := p.Cancel()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCompleted, p.Status, "failed transition must not mutate state")
}

func TestRefund_OnlyFromCompleted(t *testing.T) {
	p, _ := NewFromIntent(trialIntent(t), "razorpay")
	err := p.Refund("rfnd_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPending, p.Status)
	assert.NotContains(t, p.ExtraData, "refund_id")
}

func TestFail_RecordsReason(t *testing.T) {
	p, _ := NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, p.MarkProcessing("order_1"))
	require.NoError(t, p.Fail("Invalid payment signature"))

	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "Invalid payment signature", p.FailureReason)

	// terminal: nothing else is allowed
	assert.Error(t, p.Cancel())
	assert.Error(t, p.Refund("r"))
	assert.Error(t, p.Complete("p", "s", "m"))
}

func TestRecordRefundFailure_KeepsCompleted(t *testing.T) {
	p, _ := NewFromIntent(trialIntent(t), "razorpay")
	require.NoError(t, p.MarkProcessing("order_1"))
	require.NoError(t, p.Complete("pay_1", "sig", "card"))

	p.RecordRefundFailure("gateway timeout")

	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, "gateway timeout", p.ExtraData["refund_error"])
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}
