package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// unitOfWork implements domain.UnitOfWork over a single database
// transaction.
type unitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a new unit of work bound to the database
func NewUnitOfWork(db *DB) domain.UnitOfWork {
	return &unitOfWork{db: db}
}

// Execute runs fn inside one database transaction. The transaction
// commits iff fn returns nil; any error rolls it back so no partial
// write set is ever visible.
func (u *unitOfWork) Execute(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	dbTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(&ledgerTx{tx: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ledgerTx implements domain.LedgerTx over an open *sql.Tx
type ledgerTx struct {
	tx *sql.Tx
}

// GetAccount retrieves an account within the transaction without locking it
func (l *ledgerTx) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, name, type
		FROM accounts
		WHERE id = $1
	`

	return l.scanAccount(ctx, query, id)
}

// LockAccount retrieves an account and takes a row lock on it until the
// transaction ends. Concurrent debits against the same account queue on
// this lock, so the second one re-reads a balance that already includes
// the first debit.
func (l *ledgerTx) LockAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, name, type
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	return l.scanAccount(ctx, query, id)
}

func (l *ledgerTx) scanAccount(ctx context.Context, query string, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := l.tx.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Type,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// Balance returns the account balance as visible to this transaction
func (l *ledgerTx) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return queryBalance(ctx, l.tx, accountID)
}

// WriteTransaction persists the transaction row and all of its ledger
// entries as one write set within the open transaction.
func (l *ledgerTx) WriteTransaction(ctx context.Context, tx *domain.Transaction) error {
	insertTxQuery := `
		INSERT INTO transactions (id, type, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := l.tx.ExecContext(ctx, insertTxQuery,
		tx.ID,
		string(tx.Kind),
		tx.Amount.String(),
		string(tx.Status),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	insertEntryQuery := `
		INSERT INTO ledger (id, account_id, transaction_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, entry := range tx.Entries {
		_, err = l.tx.ExecContext(ctx, insertEntryQuery,
			entry.ID,
			entry.AccountID,
			entry.TransactionID,
			entry.Amount.String(),
			string(entry.Kind),
			entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ledger entry: %w", err)
		}
	}

	return nil
}
