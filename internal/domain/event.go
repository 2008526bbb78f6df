package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCompleted is published after a money-movement operation
// commits. CounterpartyID is set only for transfers (the destination
// account).
type TransactionCompleted struct {
	TransactionID  uuid.UUID       `json:"transaction_id"`
	Kind           TransactionKind `json:"kind"`
	AccountID      uuid.UUID       `json:"account_id"`
	CounterpartyID *uuid.UUID      `json:"counterparty_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing domain events to
// downstream consumers. Publishing is best effort: the ledger rows are
// the source of truth and a failed publish never fails the operation.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
