package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerRepository implements domain.LedgerRepository
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Balance returns the sum of the signed amounts of all ledger entries
// for the account. COALESCE makes the empty set sum to exactly zero, so
// an account with no entries (or an unknown account) reports zero.
func (r *ledgerRepository) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return queryBalance(ctx, r.db, accountID)
}

// EntriesByAccount retrieves all ledger entries for the account, newest first
func (r *ledgerRepository) EntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, account_id, transaction_id, amount, type, created_at
		FROM ledger
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var entry domain.LedgerEntry
		var amountStr string

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.TransactionID,
			&amountStr,
			&entry.Kind,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse entry amount: %w", err)
		}
		entry.Amount = amount

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// queryable abstracts *sql.DB and *sql.Tx so the balance aggregate can
// run both standalone and inside a unit of work.
type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// queryBalance computes the derived balance within the given read context
func queryBalance(ctx context.Context, q queryable, accountID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger
		WHERE account_id = $1
	`

	var balanceStr string
	if err := q.QueryRowContext(ctx, query, accountID).Scan(&balanceStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to query balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance: %w", err)
	}

	return balance, nil
}
