package domain

import (
	"errors"

	"github.com/google/uuid"
)

// AccountType classifies an account for reporting purposes.
// The classification is free-form; the constants below are the
// conventional values but callers may supply their own.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
)

// Account represents an account entity in the domain layer.
// Accounts carry no stored balance: the balance is always derived by
// summing the ledger entries that reference the account.
type Account struct {
	ID   uuid.UUID
	Name string
	Type AccountType
}

// Validate ensures the account adheres to domain rules.
// Returns an error if validation fails.
func (a *Account) Validate() error {
	if a.Name == "" {
		return errors.New("account name cannot be empty")
	}
	if a.Type == "" {
		return errors.New("account type cannot be empty")
	}
	return nil
}
