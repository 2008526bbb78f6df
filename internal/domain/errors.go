package domain

import "errors"

// Sentinel errors returned by the usecase layer. Adapters map these to
// caller-facing status signals; everything else is treated as a server
// side failure.
var (
	// ErrInvalidAmount is returned when an operation amount is zero or
	// negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSameAccount is returned when a transfer names the same account
	// as both source and destination.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrInsufficientFunds is returned when a withdrawal or transfer
	// would drive the source account balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound is returned when a referenced account does not
	// exist.
	ErrAccountNotFound = errors.New("account not found")
)
