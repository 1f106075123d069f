package wallet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

func inr(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, "INR")
	require.NoError(t, err)
	return m
}

func TestNewWallet(t *testing.T) {
	w := NewWallet(7, "INR")

	assert.Equal(t, 7, w.InstructorID)
	assert.Equal(t, WalletActive, w.Status)
	assert.True(t, w.Balance.IsZero())
	assert.True(t, w.TotalEarned.IsZero())
	assert.True(t, w.TotalWithdrawn.IsZero())
}

func TestDeposit(t *testing.T) {
	w := NewWallet(7, "INR")
	refID := 42

	entry, err := w.Deposit(inr(t, "500"), "session", &refID, "trial lesson payout")
	require.NoError(t, err)

	assert.True(t, w.Balance.Equal(decimal.RequireFromString("500")))
	assert.True(t, w.TotalEarned.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, TypeDeposit, entry.Type)
	assert.Equal(t, TxCompleted, entry.Status)
	assert.True(t, entry.BalanceAfter.Equal(w.Balance))
	assert.Equal(t, "session", entry.ReferenceType)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, 42, *entry.ReferenceID)
	assert.NotNil(t, entry.CompletedAt)
}

func TestDeposit_InactiveWallet(t *testing.T) {
	w := NewWallet(7, "INR")
	w.Status = WalletFrozen

	_, err := w.Deposit(inr(t, "500"), "session", nil, "")
	assert.ErrorIs(t, err, ErrWalletNotActive)
	assert.True(t, w.Balance.IsZero())
}

func TestDeposit_CurrencyMismatch(t *testing.T) {
	w := NewWallet(7, "INR")
	usd, err := money.NewFromString("10", "USD")
	require.NoError(t, err)

	_, err = w.Deposit(usd, "session", nil, "")
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestRequestWithdrawal(t *testing.T) {
	w := NewWallet(7, "INR")
	_, err := w.Deposit(inr(t, "1000"), "session", nil, "")
	require.NoError(t, err)

	entry, err := w.RequestWithdrawal(inr(t, "600"), "payout request")
	require.NoError(t, err)

	// the request never moves the balance
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, TypeWithdrawal, entry.Type)
	assert.Equal(t, TxPending, entry.Status)
	assert.True(t, entry.BalanceAfter.Equal(w.Balance))
}

func TestRequestWithdrawal_InsufficientBalance(t *testing.T) {
	w := NewWallet(7, "INR")
	_, err := w.Deposit(inr(t, "100"), "session", nil, "")
	require.NoError(t, err)

	_, err = w.RequestWithdrawal(inr(t, "100.01"), "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCompleteWithdrawal(t *testing.T) {
	w := NewWallet(7, "INR")
	_, err := w.Deposit(inr(t, "1000"), "session", nil, "")
	require.NoError(t, err)

	entry, err := w.RequestWithdrawal(inr(t, "600"), "")
	require.NoError(t, err)

	require.NoError(t, w.CompleteWithdrawal(entry))

	assert.True(t, w.Balance.Equal(decimal.RequireFromString("400")))
	assert.True(t, w.TotalWithdrawn.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, TxCompleted, entry.Status)
	assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("400")))
	assert.NotNil(t, entry.CompletedAt)
}

func TestCompleteWithdrawal_NotPending(t *testing.T) {
	w := NewWallet(7, "INR")
	_, err := w.Deposit(inr(t, "1000"), "session", nil, "")
	require.NoError(t, err)

	entry, err := w.RequestWithdrawal(inr(t, "600"), "")
	require.NoError(t, err)
	require.NoError(t, w.CompleteWithdrawal(entry))

	assert.ErrorIs(t, w.CompleteWithdrawal(entry), ErrNotPendingWithdraw)
}

func TestFailWithdrawal(t *testing.T) {
	w := NewWallet(7, "INR")
	_, err := w.Deposit(inr(t, "1000"), "session", nil, "")
	require.NoError(t, err)

	entry, err := w.RequestWithdrawal(inr(t, "600"), "")
	require.NoError(t, err)

	require.NoError(t, w.FailWithdrawal(entry, "bank account rejected"))

	assert.Equal(t, TxFailed, entry.Status)
	assert.Equal(t, "bank account rejected", entry.FailureReason)
	// failed payout leaves the full balance available
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, w.TotalWithdrawn.IsZero())
}

// Balance algebra across a mixed ledger: balance always equals
// total_earned minus total_withdrawn when only deposits and completed
// withdrawals touch it.
func TestLedgerConsistency(t *testing.T) {
	w := NewWallet(7, "INR")

	for _, amount := range []string{"500", "500", "250"} {
		_, err := w.Deposit(inr(t, amount), "session", nil, "")
		require.NoError(t, err)
	}

	first, err := w.RequestWithdrawal(inr(t, "800"), "")
	require.NoError(t, err)
	require.NoError(t, w.CompleteWithdrawal(first))

	second, err := w.RequestWithdrawal(inr(t, "400"), "")
	require.NoError(t, err)
	require.NoError(t, w.FailWithdrawal(second, "gateway error"))

	assert.True(t, w.Balance.Equal(w.TotalEarned.Sub(w.TotalWithdrawn)))
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("450")))
}

func TestTransactionStatusIsTerminal(t *testing.T) {
	assert.False(t, TxPending.IsTerminal())
	assert.True(t, TxCompleted.IsTerminal())
	assert.True(t, TxFailed.IsTerminal())
	assert.True(t, TxCancelled.IsTerminal())
}
