package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by its ID.
	// Returns ErrAccountNotFound if no such account exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

// LedgerRepository defines the interface for reading the ledger outside
// of a unit of work.
type LedgerRepository interface {
	// Balance returns the sum of the signed amounts of all ledger
	// entries for the account. An account with no entries (including an
	// unknown account) has a balance of exactly zero.
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)

	// EntriesByAccount retrieves all ledger entries for the account,
	// newest first. Returns an empty slice when there are none.
	EntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]LedgerEntry, error)
}

// LedgerTx exposes the reads and writes available inside one unit of
// work. All methods observe and affect the same store transaction.
type LedgerTx interface {
	// GetAccount retrieves an account without locking it.
	// Returns ErrAccountNotFound if no such account exists.
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// LockAccount retrieves an account and takes a row lock on it for
	// the remainder of the unit of work, serializing concurrent debits
	// against the same account. Returns ErrAccountNotFound if no such
	// account exists.
	LockAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// Balance returns the account balance as visible to this unit of
	// work.
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)

	// WriteTransaction persists the transaction row and all of its
	// ledger entries as one write set.
	WriteTransaction(ctx context.Context, tx *Transaction) error
}

// UnitOfWork runs a function inside one atomic, isolated store
// transaction. The transaction commits iff fn returns nil; any error
// from fn (or from the store) forces an unconditional rollback, so no
// partial state is ever visible.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx LedgerTx) error) error
}
