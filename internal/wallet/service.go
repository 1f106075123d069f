package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/db"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/metrics"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/money"
)

type Service interface {
	CreateWallet(ctx context.Context, instructorID int, currency string) (*Wallet, error)
	DepositFunds(ctx context.Context, instructorID int, amount money.Money, refType string, refID *int, description string) (*Transaction, error)
	RequestWithdrawal(ctx context.Context, instructorID int, amount money.Money) (*Transaction, error)
	CompleteWithdrawal(ctx context.Context, transactionID int) (*Transaction, error)
	FailWithdrawal(ctx context.Context, transactionID int, reason string) (*Transaction, error)
	GetWalletBalance(ctx context.Context, instructorID int) (*Wallet, error)
	GetTransactionHistory(ctx context.Context, instructorID int, filters TransactionFilters, limit, offset int) ([]Transaction, bool, error)
}

type service struct {
	repo   Repository
	runner db.TxRunner
}

func NewService(repo Repository, runner db.TxRunner) Service {
	return &service{repo: repo, runner: runner}
}

func (s *service) CreateWallet(ctx context.Context, instructorID int, currency string) (*Wallet, error) {
	if _, err := s.repo.GetByInstructorID(ctx, instructorID); err == nil {
		return nil, ErrWalletExists
	} else if err != ErrWalletNotFound {
		return nil, err
	}

	w := NewWallet(instructorID, currency)
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

func (s *service) DepositFunds(ctx context.Context, instructorID int, amount money.Money, refType string, refID *int, description string) (*Transaction, error) {
	var deposit *Transaction

	err := s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		w, err := repo.GetByInstructorIDForUpdate(ctx, instructorID)
		if err != nil {
			return err
		}

		deposit, err = w.Deposit(amount, refType, refID, description)
		if err != nil {
			return err
		}

		if err := repo.Update(ctx, w); err != nil {
			return err
		}
		return repo.SaveTransaction(ctx, deposit)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWalletDeposit()
	return deposit, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, instructorID int, amount money.Money) (*Transaction, error) {
	var withdrawal *Transaction

	err := s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		w, err := repo.GetByInstructorIDForUpdate(ctx, instructorID)
		if err != nil {
			return err
		}

		pending, err := repo.GetPendingWithdrawals(ctx, w.ID)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return ErrPendingWithdrawal
		}

		withdrawal, err = w.RequestWithdrawal(amount, "payout request")
		if err != nil {
			return err
		}

		return repo.SaveTransaction(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWalletWithdrawal("requested")
	return withdrawal, nil
}

func (s *service) CompleteWithdrawal(ctx context.Context, transactionID int) (*Transaction, error) {
	var completed *Transaction

	err := s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		t, err := repo.GetTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}

		w, err := repo.GetByIDForUpdate(ctx, t.WalletID)
		if err != nil {
			return err
		}

		if err := w.CompleteWithdrawal(t); err != nil {
			return err
		}

		if err := repo.Update(ctx, w); err != nil {
			return err
		}
		completed = t
		return repo.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWalletWithdrawal("completed")
	return completed, nil
}

func (s *service) FailWithdrawal(ctx context.Context, transactionID int, reason string) (*Transaction, error) {
	var failed *Transaction

	err := s.runner.InTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.repo.WithTx(tx)

		t, err := repo.GetTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}

		w, err := repo.GetByIDForUpdate(ctx, t.WalletID)
		if err != nil {
			return err
		}

		if err := w.FailWithdrawal(t, reason); err != nil {
			return err
		}

		// no wallet mutation: the request never debited the balance
		failed = t
		return repo.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWalletWithdrawal("failed")
	return failed, nil
}

func (s *service) GetWalletBalance(ctx context.Context, instructorID int) (*Wallet, error) {
	return s.repo.GetByInstructorID(ctx, instructorID)
}

// GetTransactionHistory over-fetches one row to compute has_more without a
// second count query.
func (s *service) GetTransactionHistory(ctx context.Context, instructorID int, filters TransactionFilters, limit, offset int) ([]Transaction, bool, error) {
	w, err := s.repo.GetByInstructorID(ctx, instructorID)
	if err != nil {
		return nil, false, err
	}

	if limit <= 0 {
		limit = 50
	}

	txs, err := s.repo.GetTransactionsByWalletID(ctx, w.ID, filters, limit+1, offset)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(txs) > limit
	if hasMore {
		txs = txs[:limit]
	}

	return txs, hasMore, nil
}
