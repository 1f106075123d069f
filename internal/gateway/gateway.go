package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

var ErrOrderCreation = errors.New("gateway order creation failed")

// OrderRequest carries everything the gateway needs to open a checkout.
type OrderRequest struct {
	Amount          money.Money
	Receipt         string
	Notes           map[string]interface{}
	CustomerName    string
	CustomerEmail   string
	CustomerContact string
}

// Order is returned to the client so it can complete payment out-of-band.
type Order struct {
	OrderID     string                 `json:"order_id"`
	AmountMinor int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Prefill     map[string]interface{} `json:"prefill,omitempty"`
}

type VerificationResult struct {
	IsValid       bool
	PaymentMethod string
	ErrorMessage  string
}

type RefundResult struct {
	IsSuccess    bool
	RefundID     string
	ErrorMessage string
}

// Gateway is the payment-provider contract. Implementations never panic on
// provider failures; they fold them into result structs or typed errors.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifyPayment(orderID, paymentID, signature string) VerificationResult
	RefundPayment(ctx context.Context, paymentID string, amount *money.Money, notes map[string]interface{}) RefundResult
	GetPaymentDetails(ctx context.Context, paymentID string) (map[string]interface{}, error)
	PublicKey() string
	Name() string
}

// signPayload computes the checkout signature: HMAC-SHA256 over
// "<order_id>|<payment_id>" with the key secret. Shared by the Razorpay
// client and the in-memory fake so both sides of a test agree.
func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func signatureMatches(orderID, paymentID, signature, secret string) bool {
	expected := signPayload(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
