package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  error
	}{
		{"valid", "500", "INR", nil},
		{"zero amount", "0", "INR", ErrNonPositiveAmount},
		{"negative amount", "-10", "INR", ErrNonPositiveAmount},
		{"bad currency", "10", "RUPEES", ErrInvalidCurrency},
		{"empty currency", "10", "", ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, m.IsZero())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.currency, m.Currency())
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	m, err := NewFromString("500", "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), m.MinorUnits())

	m, err = NewFromString("499.99", "INR")
	require.NoError(t, err)
	assert.Equal(t, int64(49999), m.MinorUnits())
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	a, _ := NewFromString("10", "INR")
	b, _ := NewFromString("10", "USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestString(t *testing.T) {
	m, _ := NewFromString("500", "INR")
	assert.Equal(t, "500.00 INR", m.String())
}
