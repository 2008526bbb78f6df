package events

import (
	"context"

	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
)

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

// NewNopPublisher creates a publisher that does nothing
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish discards the event
func (p *NopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

var _ domain.EventPublisher = (*NopPublisher)(nil)
