package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

// Fake is an in-memory Gateway for tests and local development. It signs
// orders with the same HMAC scheme as the real provider, so a test can mint
// valid (or invalid) signatures at will.
type Fake struct {
	mu     sync.Mutex
	secret string

	orders  map[string]OrderRequest
	refunds map[string]string

	FailOrders  bool
	FailRefunds bool
	RefundError string
}

func NewFake(secret string) *Fake {
	return &Fake{
		secret:  secret,
		orders:  make(map[string]OrderRequest),
		refunds: make(map[string]string),
	}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) PublicKey() string { return "rzp_test_fake" }

func (f *Fake) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailOrders {
		return nil, fmt.Errorf("%w: fake gateway is down", ErrOrderCreation)
	}

	orderID := "order_" + uuid.NewString()
	f.orders[orderID] = req

	return &Order{
		OrderID:     orderID,
		AmountMinor: req.Amount.MinorUnits(),
		Currency:    req.Amount.Currency(),
		Key:         f.PublicKey(),
		Name:        "Tutorly",
		Description: fmt.Sprintf("Lesson booking %s", req.Receipt),
		Prefill: map[string]interface{}{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
	}, nil
}

func (f *Fake) VerifyPayment(orderID, paymentID, signature string) VerificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, known := f.orders[orderID]; !known {
		return VerificationResult{IsValid: false, ErrorMessage: "unknown order"}
	}
	if !signatureMatches(orderID, paymentID, signature, f.secret) {
		return VerificationResult{IsValid: false, ErrorMessage: "Invalid payment signature"}
	}
	return VerificationResult{IsValid: true, PaymentMethod: "upi"}
}

func (f *Fake) RefundPayment(ctx context.Context, paymentID string, amount *money.Money, notes map[string]interface{}) RefundResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailRefunds {
		msg := f.RefundError
		if msg == "" {
			msg = "refund rejected by gateway"
		}
		return RefundResult{IsSuccess: false, ErrorMessage: msg}
	}

	refundID := "rfnd_" + uuid.NewString()
	f.refunds[paymentID] = refundID
	return RefundResult{IsSuccess: true, RefundID: refundID}
}

func (f *Fake) GetPaymentDetails(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	return map[string]interface{}{
		"id":     paymentID,
		"status": "captured",
		"method": "upi",
	}, nil
}

// Sign produces a valid signature for the given order/payment pair.
func (f *Fake) Sign(orderID, paymentID string) string {
	return signPayload(orderID, paymentID, f.secret)
}

// RefundID reports the refund issued for a payment, if any.
func (f *Fake) RefundID(paymentID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.refunds[paymentID]
	return id, ok
}
