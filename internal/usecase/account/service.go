package account

import (
	"context"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService handles account creation and read operations
type AccountService struct {
	AccountRepo domain.AccountRepository
	LedgerRepo  domain.LedgerRepository
}

// NewAccountService creates a new AccountService instance
func NewAccountService(accountRepo domain.AccountRepository, ledgerRepo domain.LedgerRepository) *AccountService {
	return &AccountService{
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
	}
}

// CreateAccount creates a new account. Accounts start with no ledger
// entries, so the derived balance of a fresh account is zero.
func (s *AccountService) CreateAccount(ctx context.Context, name string, accountType domain.AccountType) (*domain.Account, error) {
	account := &domain.Account{
		ID:   uuid.New(),
		Name: name,
		Type: accountType,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account together with its resolved balance
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, decimal.Decimal, error) {
	account, err := s.AccountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}

	balance, err := s.LedgerRepo.Balance(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}

	return account, balance, nil
}

// GetLedgerHistory retrieves the ledger entries for an account, newest
// first. An account with no entries yields an empty slice, not an error.
func (s *AccountService) GetLedgerHistory(ctx context.Context, id uuid.UUID) ([]domain.LedgerEntry, error) {
	return s.LedgerRepo.EntriesByAccount(ctx, id)
}
