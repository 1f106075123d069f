package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/logger"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

const razorpayName = "razorpay"

// Razorpay wraps the official SDK behind the Gateway contract.
type Razorpay struct {
	client      *razorpay.Client
	keyID       string
	keySecret   string
	displayName string
}

func NewRazorpay(keyID, keySecret, displayName string) *Razorpay {
	return &Razorpay{
		client:      razorpay.NewClient(keyID, keySecret),
		keyID:       keyID,
		keySecret:   keySecret,
		displayName: displayName,
	}
}

func (r *Razorpay) Name() string { return razorpayName }

func (r *Razorpay) PublicKey() string { return r.keyID }

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":   req.Amount.MinorUnits(),
		"currency": req.Amount.Currency(),
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	resp, err := r.client.Order.Create(data, nil)
	if err != nil {
		logger.Errorf("Razorpay order creation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}

	orderID, _ := resp["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("%w: response missing order id", ErrOrderCreation)
	}

	return &Order{
		OrderID:     orderID,
		AmountMinor: req.Amount.MinorUnits(),
		Currency:    req.Amount.Currency(),
		Key:         r.keyID,
		Name:        r.displayName,
		Description: fmt.Sprintf("Lesson booking %s", req.Receipt),
		Prefill: map[string]interface{}{
			"name":    req.CustomerName,
			"email":   req.CustomerEmail,
			"contact": req.CustomerContact,
		},
	}, nil
}

func (r *Razorpay) VerifyPayment(orderID, paymentID, signature string) VerificationResult {
	if orderID == "" || paymentID == "" || signature == "" {
		return VerificationResult{IsValid: false, ErrorMessage: "missing verification parameters"}
	}

	if !signatureMatches(orderID, paymentID, signature, r.keySecret) {
		return VerificationResult{IsValid: false, ErrorMessage: "Invalid payment signature"}
	}

	return VerificationResult{IsValid: true}
}

func (r *Razorpay) RefundPayment(ctx context.Context, paymentID string, amount *money.Money, notes map[string]interface{}) RefundResult {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	var minor int
	if amount != nil {
		minor = int(amount.MinorUnits())
	} else {
		// full refund: look the captured amount up
		details, err := r.GetPaymentDetails(ctx, paymentID)
		if err != nil {
			return RefundResult{IsSuccess: false, ErrorMessage: err.Error()}
		}
		captured, ok := details["amount"].(float64)
		if !ok {
			return RefundResult{IsSuccess: false, ErrorMessage: "payment amount unavailable for full refund"}
		}
		minor = int(captured)
	}

	resp, err := r.client.Payment.Refund(paymentID, minor, data, nil)
	if err != nil {
		logger.Errorf("Razorpay refund failed for %s: %v", paymentID, err)
		return RefundResult{IsSuccess: false, ErrorMessage: err.Error()}
	}

	refundID, _ := resp["id"].(string)
	return RefundResult{IsSuccess: true, RefundID: refundID}
}

func (r *Razorpay) GetPaymentDetails(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	resp, err := r.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}
	return resp, nil
}
