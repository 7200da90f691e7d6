package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Querier is the subset of database operations shared by *sql.DB and
// *sql.Tx. Repositories run against a Querier so the same code serves both
// direct and transactional access.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// TxRunner executes a function within a single database transaction.
type TxRunner interface {
	// InTx begins a transaction, passes it to fn, and commits if fn returns
	// nil. Any error from fn (or the commit) rolls the transaction back and
	// is returned; no partial writes survive.
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type txRunner struct {
	db *sql.DB
}

// NewTxRunner creates a TxRunner over the given connection pool.
func NewTxRunner(db *sql.DB) TxRunner {
	return &txRunner{db: db}
}

func (r *txRunner) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit transaction: %w", err)
	}

	return err
}
