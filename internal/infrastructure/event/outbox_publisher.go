package event

import (
	"context"

	"github.com/transitpay/settlement/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher records settlement events as outbox rows on the same
// connection as the intent or invoice write that raised them. Nothing is
// delivered here; the OutboxProcessor picks the rows up after commit.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer, maxRetries: shared.DefaultMaxRetries}
}

// WithMaxRetries sets the delivery budget of entries created from now on.
// Non-positive values keep the default.
func (p *OutboxPublisher) WithMaxRetries(n int) *OutboxPublisher {
	if n > 0 {
		p.maxRetries = n
	}
	return p
}

// Entries encodes events into pending outbox entries.
func (p *OutboxPublisher) Entries(events ...shared.DomainEvent) ([]*shared.OutboxEntry, error) {
	out := make([]*shared.OutboxEntry, len(events))
	for i, evt := range events {
		payload, err := p.serializer.Serialize(evt)
		if err != nil {
			return nil, err
		}
		out[i] = shared.NewOutboxEntry(evt, payload)
		out[i].MaxRetries = p.maxRetries
	}
	return out, nil
}

// PublishWithTx saves events through tx so they commit or roll back with the
// settlement change.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries, err := p.Entries(events...)
	if err != nil {
		return err
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}
