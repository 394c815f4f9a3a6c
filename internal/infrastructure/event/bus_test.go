package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/shared"
	"go.uber.org/zap"
)

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                            { return []string{"TestEvent"} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to typed and wildcard handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		typed := newTestHandler("TestEvent")
		other := newTestHandler("OtherEvent")
		all := newTestHandler()
		bus.Subscribe(typed)
		bus.Subscribe(other)
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))

		assert.Equal(t, 1, typed.count())
		assert.Equal(t, 0, other.count())
		assert.Equal(t, 1, all.count())
	})

	t.Run("a failing handler does not stop its siblings", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := newTestHandler("TestEvent")
		failing.setError(errors.New("smtp down"))
		ok := newTestHandler("TestEvent")
		bus.Subscribe(failing)
		bus.Subscribe(ok)

		err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp down")
		assert.Equal(t, 1, ok.count())
	})

	t.Run("a panicking handler becomes an error", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		bus.Subscribe(panicHandler{})

		err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("TestEvent")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_ErrorNamesHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("TestEvent")
	failing.setError(errors.New("template missing"))
	store := new(MockIdempotencyStore)
	store.On("Claim", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	store.On("Release", mock.Anything, mock.Anything).Return(nil)
	bus.Subscribe(NewIdempotentHandler("invoice-notifier", failing, store, 0, zap.NewNop()))

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice-notifier: template missing")
}
