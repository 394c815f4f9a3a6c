// Package uow defines the transaction boundary shared by the settlement
// services. Every write that touches an intent, an invoice ledger or the
// outbox runs inside one Execute call.
package uow

import (
	"context"
	"errors"

	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// EventRecorder appends domain events to the transactional outbox.
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// Repositories exposes every repository bound to one connection or
// transaction.
type Repositories interface {
	Intents() payment.IntentRepository
	Refunds() payment.RefundRepository
	Methods() payment.MethodRepository
	ProcessedEvents() payment.ProcessedEventRepository
	Invoices() invoice.Repository
	Payments() invoice.PaymentRepository
	Events() EventRecorder
}

// TransactionScope runs fn inside a database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// DefaultConflictRetries is how many times a write that lost an optimistic
// lock race is re-read and reapplied.
const DefaultConflictRetries = 3

// ExecuteWithRetry runs fn in a transaction and retries the whole
// transaction when it fails with a ConcurrencyError.
func ExecuteWithRetry(ctx context.Context, scope TransactionScope, attempts int, fn func(ctx context.Context, repos Repositories) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for range attempts {
		err = scope.Execute(ctx, fn)
		if err == nil || !shared.IsConcurrencyError(err) {
			return err
		}
		if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
	}
	return err
}

// RecordEvents moves the pending events of each source into the outbox and
// clears them.
func RecordEvents(ctx context.Context, repos Repositories, sources ...shared.EventSource) error {
	var events []shared.DomainEvent
	for _, s := range sources {
		events = append(events, s.GetDomainEvents()...)
	}
	if len(events) == 0 {
		return nil
	}
	if err := repos.Events().Record(ctx, events...); err != nil {
		return err
	}
	for _, s := range sources {
		s.ClearDomainEvents()
	}
	return nil
}
