package payment

import (
	"context"

	"github.com/google/uuid"
)

// IntentRepository persists payment intents. The ForUpdate variants take a
// row lock for the rest of the surrounding transaction. Lookups return a
// not-found DomainError when no row matches.
type IntentRepository interface {
	Create(ctx context.Context, intent *PaymentIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentIntent, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PaymentIntent, error)
	FindByExternalReferenceForUpdate(ctx context.Context, reference string) (*PaymentIntent, error)
	// Save updates an existing intent guarded by its version.
	Save(ctx context.Context, intent *PaymentIntent) error
}

// RefundRepository persists refunds. FindByExternalReference returns nil, nil
// when the reference is unknown.
type RefundRepository interface {
	Create(ctx context.Context, refund *Refund) error
	FindByExternalReference(ctx context.Context, reference string) (*Refund, error)
	FindByIntent(ctx context.Context, intentID uuid.UUID) ([]*Refund, error)
}

// MethodRepository persists the payment method vault. FindByID returns a
// not-found DomainError; FindByExternalReference and FindDefault return
// nil, nil when nothing matches.
type MethodRepository interface {
	Create(ctx context.Context, method *PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*PaymentMethod, error)
	FindByExternalReference(ctx context.Context, ownerID, reference string) (*PaymentMethod, error)
	FindDefault(ctx context.Context, ownerID string) (*PaymentMethod, error)
	// ClearDefault unsets is_default for every method of the owner.
	ClearDefault(ctx context.Context, ownerID string) error
	SetDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProcessedEventRepository records webhook events that have been applied.
type ProcessedEventRepository interface {
	// MarkProcessed inserts the event id and reports false when it was
	// already present.
	MarkProcessed(ctx context.Context, externalEventID, eventType string) (bool, error)
}
