package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

func fakeOrder(t *testing.T, f *Fake) *Order {
	t.Helper()
	amount, err := money.NewFromString("500", "INR")
	require.NoError(t, err)

	order, err := f.CreateOrder(context.Background(), OrderRequest{
		Amount:        amount,
		Receipt:       "rcpt_1",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
	})
	require.NoError(t, err)
	return order
}

func TestFake_CreateOrder(t *testing.T) {
	f := NewFake("secret")
	order := fakeOrder(t, f)

	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, int64(50000), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_fake", order.Key)
}

func TestFake_VerifyPayment(t *testing.T) {
	f := NewFake("secret")
	order := fakeOrder(t, f)

	valid := f.VerifyPayment(order.OrderID, "pay_1", f.Sign(order.OrderID, "pay_1"))
	assert.True(t, valid.IsValid)
	assert.Equal(t, "upi", valid.PaymentMethod)

	invalid := f.VerifyPayment(order.OrderID, "pay_1", "tampered")
	assert.False(t, invalid.IsValid)
	assert.Equal(t, "Invalid payment signature", invalid.ErrorMessage)

	unknown := f.VerifyPayment("order_nope", "pay_1", "sig")
	assert.False(t, unknown.IsValid)
}

func TestFake_FailureSwitches(t *testing.T) {
	f := NewFake("secret")
	f.FailOrders = true

	amount, _ := money.NewFromString("500", "INR")
	_, err := f.CreateOrder(context.Background(), OrderRequest{Amount: amount})
	assert.ErrorIs(t, err, ErrOrderCreation)

	f.FailRefunds = true
	f.RefundError = "insufficient balance in merchant account"
	res := f.RefundPayment(context.Background(), "pay_1", nil, nil)
	assert.False(t, res.IsSuccess)
	assert.Equal(t, "insufficient balance in merchant account", res.ErrorMessage)
}

func TestRazorpay_VerifyPayment_LocalOnly(t *testing.T) {
	r := NewRazorpay("rzp_test_key", "secret", "Tutorly")

	sig := signPayload("order_1", "pay_1", "secret")
	assert.True(t, r.VerifyPayment("order_1", "pay_1", sig).IsValid)
	assert.False(t, r.VerifyPayment("order_1", "pay_1", "bad").IsValid)
	assert.False(t, r.VerifyPayment("", "pay_1", sig).IsValid)
}
