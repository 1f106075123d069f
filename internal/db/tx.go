package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner runs a function inside a database transaction. Services depend on
// this interface so tests can substitute a pass-through runner.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type Runner struct {
	db *sqlx.DB
}

func NewRunner(db *sqlx.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
