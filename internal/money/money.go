package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrInvalidCurrency   = errors.New("currency must be a 3-letter code")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)

// Money is an immutable currency-scoped amount. The zero value is invalid;
// construct through New.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func New(amount decimal.Decimal, currency string) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, ErrNonPositiveAmount
	}
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: currency}, nil
}

func NewFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string { return m.currency }

func (m Money) IsZero() bool { return m.currency == "" }

// MinorUnits returns the amount in the currency's smallest unit
// (500.00 INR -> 50000 paise).
func (m Money) MinorUnits() int64 {
	return m.amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) GreaterThan(other decimal.Decimal) bool {
	return m.amount.GreaterThan(other)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
