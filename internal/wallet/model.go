package wallet

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

type WalletStatus string
type TransactionType string
type TransactionStatus string

const (
	WalletActive    WalletStatus = "active"
	WalletFrozen    WalletStatus = "frozen"
	WalletSuspended WalletStatus = "suspended"

	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeRefund     TransactionType = "refund"
	TypeAdjustment TransactionType = "adjustment"

	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
	TxCancelled TransactionStatus = "cancelled"
)

var (
	ErrWalletNotActive     = errors.New("wallet is not active")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrCurrencyMismatch    = errors.New("transaction currency does not match wallet")
	ErrNotPendingWithdraw  = errors.New("transaction is not a pending withdrawal")
	ErrTerminalTransaction = errors.New("transaction already in a terminal state")
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TxCompleted || s == TxFailed || s == TxCancelled
}

// Metadata is a free-form JSONB column on transactions.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Metadata", src)
	}
	return json.Unmarshal(b, m)
}

// Wallet is the single balance ledger for one instructor. Balance moves only
// through the methods below.
type Wallet struct {
	ID             int             `db:"id" json:"id"`
	InstructorID   int             `db:"instructor_id" json:"instructor_id"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	Currency       string          `db:"currency" json:"currency"`
	Status         WalletStatus    `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is one ledger entry. Immutable once terminal.
type Transaction struct {
	ID            int               `db:"id" json:"id"`
	WalletID      int               `db:"wallet_id" json:"wallet_id"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	BalanceAfter  decimal.Decimal   `db:"balance_after" json:"balance_after"`
	Status        TransactionStatus `db:"status" json:"status"`
	ReferenceType string            `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   *int              `db:"reference_id" json:"reference_id,omitempty"`
	Description   string            `db:"description" json:"description,omitempty"`
	ExtraData     Metadata          `db:"extra_data" json:"extra_data,omitempty"`
	FailureReason string            `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
}

func NewWallet(instructorID int, currency string) *Wallet {
	return &Wallet{
		InstructorID:   instructorID,
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		Currency:       currency,
		Status:         WalletActive,
	}
}

func (w *Wallet) guardAmount(amount money.Money) error {
	if w.Status != WalletActive {
		return fmt.Errorf("%w: status %s", ErrWalletNotActive, w.Status)
	}
	if amount.Currency() != w.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// Deposit credits the wallet immediately and returns the completed ledger
// entry. balance = balance + amount, total_earned likewise.
func (w *Wallet) Deposit(amount money.Money, refType string, refID *int, description string) (*Transaction, error) {
	if err := w.guardAmount(amount); err != nil {
		return nil, err
	}

	w.Balance = w.Balance.Add(amount.Amount())
	w.TotalEarned = w.TotalEarned.Add(amount.Amount())
	w.UpdatedAt = time.Now()

	now := time.Now()
	return &Transaction{
		WalletID:      w.ID,
		Type:          TypeDeposit,
		Amount:        amount.Amount(),
		BalanceAfter:  w.Balance,
		Status:        TxCompleted,
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   description,
		ExtraData:     Metadata{},
		CompletedAt:   &now,
	}, nil
}

// RequestWithdrawal creates a PENDING entry without touching the balance;
// the balance moves only on completion.
func (w *Wallet) RequestWithdrawal(amount money.Money, description string) (*Transaction, error) {
	if err := w.guardAmount(amount); err != nil {
		return nil, err
	}
	if amount.GreaterThan(w.Balance) {
		return nil, ErrInsufficientBalance
	}

	return &Transaction{
		WalletID:     w.ID,
		Type:         TypeWithdrawal,
		Amount:       amount.Amount(),
		BalanceAfter: w.Balance,
		Status:       TxPending,
		Description:  description,
		ExtraData:    Metadata{},
	}, nil
}

// CompleteWithdrawal debits the balance and finalizes the entry.
func (w *Wallet) CompleteWithdrawal(t *Transaction) error {
	if t.Type != TypeWithdrawal || t.Status != TxPending {
		return ErrNotPendingWithdraw
	}
	if t.Amount.GreaterThan(w.Balance) {
		return ErrInsufficientBalance
	}

	w.Balance = w.Balance.Sub(t.Amount)
	w.TotalWithdrawn = w.TotalWithdrawn.Add(t.Amount)
	w.UpdatedAt = time.Now()

	now := time.Now()
	t.Status = TxCompleted
	t.BalanceAfter = w.Balance
	t.CompletedAt = &now
	return nil
}

// FailWithdrawal marks the entry failed. No balance change: nothing was
// debited at request time.
func (w *Wallet) FailWithdrawal(t *Transaction, reason string) error {
	if t.Type != TypeWithdrawal || t.Status != TxPending {
		return ErrNotPendingWithdraw
	}

	t.Status = TxFailed
	t.FailureReason = reason
	t.BalanceAfter = w.Balance
	return nil
}
