package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryEventBus fans settlement events out to notification handlers in
// the caller's goroutine. All matching handlers run even when one fails, and
// their errors are joined so the outbox entry is retried as a whole.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log.Named("eventbus"),
	}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var failures []error
	for _, evt := range events {
		for _, h := range b.registry.GetHandlers(evt.EventType()) {
			err := invoke(ctx, h, evt)
			if err == nil {
				continue
			}
			logger.Enrich(ctx, b.logger).Error("event handler failed",
				zap.String("handler", handlerName(h)),
				zap.String("event_type", evt.EventType()),
				zap.String("event_id", evt.EventID().String()),
				zap.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", handlerName(h), err))
		}
	}
	return errors.Join(failures...)
}

// Subscribe routes eventTypes to handler. With no types given the handler's
// own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("subscribed",
		zap.String("handler", handlerName(handler)),
		zap.Strings("event_types", eventTypes),
	)
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.logger.Info("event bus ready", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop is a no-op; delivery is synchronous so nothing is in flight once the
// outbox processor has stopped.
func (b *InMemoryEventBus) Stop(context.Context) error {
	return nil
}

func invoke(ctx context.Context, h shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked on %s: %v", evt.EventType(), r)
		}
	}()
	return h.Handle(ctx, evt)
}

type namedHandler interface {
	Name() string
}

func handlerName(h shared.EventHandler) string {
	if n, ok := h.(namedHandler); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
