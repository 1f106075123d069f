package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TransactionFilters narrows GetTransactionsByWalletID / CountTransactions.
type TransactionFilters struct {
	Type   *TransactionType
	Status *TransactionStatus
}

type Repository interface {
	WithTx(tx *sqlx.Tx) Repository

	Save(ctx context.Context, w *Wallet) error
	Update(ctx context.Context, w *Wallet) error
	GetByID(ctx context.Context, id int) (*Wallet, error)
	GetByInstructorID(ctx context.Context, instructorID int) (*Wallet, error)
	// ForUpdate variants take a row lock; call inside a transaction.
	GetByIDForUpdate(ctx context.Context, id int) (*Wallet, error)
	GetByInstructorIDForUpdate(ctx context.Context, instructorID int) (*Wallet, error)

	SaveTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	GetTransactionByID(ctx context.Context, id int) (*Transaction, error)
	GetTransactionsByWalletID(ctx context.Context, walletID int, filters TransactionFilters, limit, offset int) ([]Transaction, error)
	GetPendingWithdrawals(ctx context.Context, walletID int) ([]Transaction, error)
	CountTransactions(ctx context.Context, walletID int, filters TransactionFilters) (int, error)
}
