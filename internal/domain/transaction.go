package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind represents the kind of a ledger entry.
// It is redundant with the sign of the entry amount but is persisted
// alongside it for readability and query convenience.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// TransactionKind represents the economic event a transaction records.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindTransfer   TransactionKind = "transfer"
)

// TransactionStatus represents the persisted status of a transaction.
// Failed operations roll back before any row is written, so only
// completed transactions ever exist.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction represents one economic event (a deposit, withdrawal or
// transfer) together with the ledger entries it produced. Transactions
// and their entries are immutable once committed.
type Transaction struct {
	ID        uuid.UUID
	Kind      TransactionKind
	Amount    decimal.Decimal // positive magnitude of the event
	Status    TransactionStatus
	CreatedAt time.Time
	Entries   []LedgerEntry
}

// LedgerEntry represents a single, immutable, signed monetary movement
// attributed to one account and one transaction. Credits are positive,
// debits negative.
type LedgerEntry struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	Amount        decimal.Decimal
	Kind          EntryKind
	CreatedAt     time.Time
}

// Validate ensures the transaction adheres to domain rules.
// Returns an error if validation fails.
// CRITICAL: enforces the double-entry shape per kind: a deposit is
// exactly one credit, a withdrawal exactly one debit, and a transfer a
// debit/credit pair on distinct accounts whose signed amounts sum to zero.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	for _, entry := range t.Entries {
		if entry.TransactionID != t.ID {
			return errors.New("entry must reference its owning transaction")
		}
		switch entry.Kind {
		case EntryKindCredit:
			if entry.Amount.LessThanOrEqual(decimal.Zero) {
				return errors.New("credit entry amount must be positive")
			}
		case EntryKindDebit:
			if entry.Amount.GreaterThanOrEqual(decimal.Zero) {
				return errors.New("debit entry amount must be negative")
			}
		default:
			return errors.New("entry kind must be credit or debit")
		}
		if !entry.Amount.Abs().Equal(t.Amount) {
			return errors.New("entry magnitude must equal the transaction amount")
		}
	}

	switch t.Kind {
	case TransactionKindDeposit:
		if len(t.Entries) != 1 || t.Entries[0].Kind != EntryKindCredit {
			return errors.New("deposit must produce exactly one credit entry")
		}
	case TransactionKindWithdrawal:
		if len(t.Entries) != 1 || t.Entries[0].Kind != EntryKindDebit {
			return errors.New("withdrawal must produce exactly one debit entry")
		}
	case TransactionKindTransfer:
		if err := validateTransferPair(t.Entries); err != nil {
			return err
		}
	default:
		return errors.New("transaction kind must be deposit, withdrawal or transfer")
	}

	return nil
}

// validateTransferPair ensures a transfer carries exactly one debit and
// one credit, on distinct accounts, with signed amounts summing to zero.
func validateTransferPair(entries []LedgerEntry) error {
	if len(entries) != 2 {
		return errors.New("transfer must produce exactly two entries")
	}

	var debit, credit *LedgerEntry
	for i := range entries {
		switch entries[i].Kind {
		case EntryKindDebit:
			debit = &entries[i]
		case EntryKindCredit:
			credit = &entries[i]
		}
	}
	if debit == nil || credit == nil {
		return errors.New("transfer must produce one debit and one credit entry")
	}
	if debit.AccountID == credit.AccountID {
		return errors.New("transfer entries must reference distinct accounts")
	}
	if !debit.Amount.Add(credit.Amount).IsZero() {
		return errors.New("transfer debit and credit must sum to zero")
	}

	return nil
}
