package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists for instructor")
	ErrTransactionNotFound = errors.New("wallet transaction not found")
	ErrPendingWithdrawal   = errors.New("a pending withdrawal already exists")
)

const walletColumns = `
	id, instructor_id, balance, total_earned, total_withdrawn, currency,
	status, created_at, updated_at`

const transactionColumns = `
	id, wallet_id, type, amount, balance_after, status, reference_type,
	reference_id, description, extra_data, failure_reason, created_at,
	completed_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sqlx.Tx) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Save(ctx context.Context, w *Wallet) error {
	query := `
		INSERT INTO wallets (instructor_id, balance, total_earned, total_withdrawn, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		w.InstructorID, w.Balance, w.TotalEarned, w.TotalWithdrawn, w.Currency, w.Status,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrWalletExists
		}
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, w *Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, total_earned = $2, total_withdrawn = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		w.Balance, w.TotalEarned, w.TotalWithdrawn, w.Status, w.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWalletNotFound
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Wallet, error) {
	return r.getWallet(ctx, `SELECT`+walletColumns+` FROM wallets WHERE id = $1`, id)
}

func (r *repository) GetByInstructorID(ctx context.Context, instructorID int) (*Wallet, error) {
	return r.getWallet(ctx, `SELECT`+walletColumns+` FROM wallets WHERE instructor_id = $1`, instructorID)
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id int) (*Wallet, error) {
	return r.getWallet(ctx, `SELECT`+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) GetByInstructorIDForUpdate(ctx context.Context, instructorID int) (*Wallet, error) {
	return r.getWallet(ctx, `SELECT`+walletColumns+` FROM wallets WHERE instructor_id = $1 FOR UPDATE`, instructorID)
}

func (r *repository) getWallet(ctx context.Context, query string, arg interface{}) (*Wallet, error) {
	var w Wallet
	err := sqlx.GetContext(ctx, r.db, &w, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) SaveTransaction(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			wallet_id, type, amount, balance_after, status, reference_type,
			reference_id, description, extra_data, failure_reason, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		t.WalletID, t.Type, t.Amount, t.BalanceAfter, t.Status, t.ReferenceType,
		t.ReferenceID, t.Description, t.ExtraData, t.FailureReason, t.CompletedAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		// idx_wallet_tx_one_pending_withdrawal serializes withdrawal requests.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrPendingWithdrawal
		}
		return fmt.Errorf("failed to save wallet transaction: %w", err)
	}

	return nil
}

func (r *repository) UpdateTransaction(ctx context.Context, t *Transaction) error {
	query := `
		UPDATE wallet_transactions
		SET balance_after = $1, status = $2, failure_reason = $3,
		    extra_data = $4, completed_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		t.BalanceAfter, t.Status, t.FailureReason, t.ExtraData, t.CompletedAt, t.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *repository) GetTransactionByID(ctx context.Context, id int) (*Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM wallet_transactions WHERE id = $1`

	var t Transaction
	err := sqlx.GetContext(ctx, r.db, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) GetTransactionsByWalletID(ctx context.Context, walletID int, filters TransactionFilters, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + transactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1`
	args := []interface{}{walletID}

	query, args = applyFilters(query, args, filters)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var txs []Transaction
	if err := sqlx.SelectContext(ctx, r.db, &txs, query, args...); err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) GetPendingWithdrawals(ctx context.Context, walletID int) ([]Transaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1 AND type = 'withdrawal' AND status = 'pending'
		ORDER BY created_at ASC`

	var txs []Transaction
	if err := sqlx.SelectContext(ctx, r.db, &txs, query, walletID); err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) CountTransactions(ctx context.Context, walletID int, filters TransactionFilters) (int, error) {
	query := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	args := []interface{}{walletID}
	query, args = applyFilters(query, args, filters)

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func applyFilters(query string, args []interface{}, filters TransactionFilters) (string, []interface{}) {
	if filters.Type != nil {
		query += fmt.Sprintf(` AND type = $%d`, len(args)+1)
		args = append(args, *filters.Type)
	}
	if filters.Status != nil {
		query += fmt.Sprintf(` AND status = $%d`, len(args)+1)
		args = append(args, *filters.Status)
	}
	return query, args
}
