package ledger

import (
	"context"
	"log"
	"time"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicTransactionCompleted is the topic transaction events are published on.
const TopicTransactionCompleted = "transaction_completed"

// DepositResult represents the outcome of a successful deposit
type DepositResult struct {
	Transaction *domain.Transaction
	NewBalance  decimal.Decimal
}

// LedgerService orchestrates the money-movement operations. Each
// operation maps to exactly one unit of work against the store; there is
// no shared mutable in-process state, so the service is safe for
// concurrent use across goroutines and processes.
type LedgerService struct {
	UnitOfWork domain.UnitOfWork
	LedgerRepo domain.LedgerRepository
	Events     domain.EventPublisher
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(
	uow domain.UnitOfWork,
	ledgerRepo domain.LedgerRepository,
	events domain.EventPublisher,
) *LedgerService {
	return &LedgerService{
		UnitOfWork: uow,
		LedgerRepo: ledgerRepo,
		Events:     events,
	}
}

// Deposit credits amount to the account.
// Logic:
//  1. Reject non-positive amounts before opening the unit of work
//  2. Inside one unit of work: verify the account exists, then write
//     Transaction(deposit) with a single credit entry
//  3. After commit: re-read the balance for the response and publish a
//     transaction-completed event
//
// Deposits need no balance check: a credit cannot drive the balance
// negative.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*DepositResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	tx := buildTransaction(domain.TransactionKindDeposit, amount)
	tx.Entries = []domain.LedgerEntry{
		creditEntry(tx, accountID, amount),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	err := s.UnitOfWork.Execute(ctx, func(work domain.LedgerTx) error {
		if _, err := work.GetAccount(ctx, accountID); err != nil {
			return err
		}
		return work.WriteTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	newBalance, err := s.LedgerRepo.Balance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, tx, accountID, nil)

	return &DepositResult{Transaction: tx, NewBalance: newBalance}, nil
}

// Withdraw debits amount from the account.
// Logic:
//  1. Reject non-positive amounts before opening the unit of work
//  2. Inside one unit of work: lock the account row, read the balance,
//     fail with ErrInsufficientFunds if it is short (rollback, zero rows
//     written), otherwise write Transaction(withdrawal) with a single
//     debit entry
//
// The row lock makes the balance check and the debit one atomic step:
// two concurrent withdrawals against a marginal balance serialize, and
// the second one observes the first debit and fails.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	tx := buildTransaction(domain.TransactionKindWithdrawal, amount)
	tx.Entries = []domain.LedgerEntry{
		debitEntry(tx, accountID, amount),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	err := s.UnitOfWork.Execute(ctx, func(work domain.LedgerTx) error {
		if _, err := work.LockAccount(ctx, accountID); err != nil {
			return err
		}

		balance, err := work.Balance(ctx, accountID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		return work.WriteTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, tx, accountID, nil)

	return tx, nil
}

// Transfer moves amount from the source account to the destination
// account as one balanced debit/credit pair.
// Logic:
//  1. Reject non-positive amounts and self-transfers before opening the
//     unit of work
//  2. Inside one unit of work: lock the source row, verify the
//     destination exists, read the source balance, fail with
//     ErrInsufficientFunds if it is short, otherwise write
//     Transaction(transfer) with the debit and credit entries as one
//     write set
func (s *LedgerService) Transfer(ctx context.Context, sourceID, destID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if sourceID == destID {
		return nil, domain.ErrSameAccount
	}

	tx := buildTransaction(domain.TransactionKindTransfer, amount)
	tx.Entries = []domain.LedgerEntry{
		debitEntry(tx, sourceID, amount),
		creditEntry(tx, destID, amount),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	err := s.UnitOfWork.Execute(ctx, func(work domain.LedgerTx) error {
		if _, err := work.LockAccount(ctx, sourceID); err != nil {
			return err
		}
		if _, err := work.GetAccount(ctx, destID); err != nil {
			return err
		}

		balance, err := work.Balance(ctx, sourceID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		return work.WriteTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, tx, sourceID, &destID)

	return tx, nil
}

// buildTransaction creates a completed transaction shell for the given
// kind and amount. Identities are generated fresh per attempt.
func buildTransaction(kind domain.TransactionKind, amount decimal.Decimal) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		Kind:      kind,
		Amount:    amount,
		Status:    domain.TransactionStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

func creditEntry(tx *domain.Transaction, accountID uuid.UUID, amount decimal.Decimal) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		TransactionID: tx.ID,
		Amount:        amount,
		Kind:          domain.EntryKindCredit,
		CreatedAt:     tx.CreatedAt,
	}
}

func debitEntry(tx *domain.Transaction, accountID uuid.UUID, amount decimal.Decimal) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		TransactionID: tx.ID,
		Amount:        amount.Neg(),
		Kind:          domain.EntryKindDebit,
		CreatedAt:     tx.CreatedAt,
	}
}

// publishCompleted emits a transaction-completed event. Publishing is
// best effort: the committed ledger rows are the source of truth, so a
// failed publish is logged and never surfaced to the caller.
func (s *LedgerService) publishCompleted(ctx context.Context, tx *domain.Transaction, accountID uuid.UUID, counterpartyID *uuid.UUID) {
	if s.Events == nil {
		return
	}

	event := domain.TransactionCompleted{
		TransactionID:  tx.ID,
		Kind:           tx.Kind,
		AccountID:      accountID,
		CounterpartyID: counterpartyID,
		Amount:         tx.Amount,
		OccurredAt:     tx.CreatedAt,
	}

	if err := s.Events.Publish(ctx, TopicTransactionCompleted, event); err != nil {
		log.Printf("Failed to publish transaction completed event for %s: %v", tx.ID, err)
	}
}
