package shared

import "context"

// EventHandler reacts to events delivered by the outbox processor. A
// returned error sends the outbox entry back for retry, so Handle must be
// safe to run more than once for the same event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types to route to this handler; nil routes all.
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the in-process fan-out between the outbox and the
// notification handlers.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
