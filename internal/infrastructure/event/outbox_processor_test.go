package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/shared"
	"go.uber.org/zap"
)

type recordedDelivery struct {
	eventType string
	status    shared.OutboxStatus
}

type fakeRecorder struct {
	mu  sync.Mutex
	got []recordedDelivery
}

func (f *fakeRecorder) RecordOutboxDelivery(_ context.Context, eventType string, status shared.OutboxStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, recordedDelivery{eventType, status})
}

func setupProcessor(t *testing.T) (*OutboxProcessor, *GormOutboxRepository, *InMemoryEventBus, *EventSerializer) {
	t.Helper()
	repo := NewGormOutboxRepository(setupSQLite(t))
	bus := NewInMemoryEventBus(zap.NewNop())
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})
	cfg := DefaultOutboxProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	return NewOutboxProcessor(repo, bus, serializer, cfg, zap.NewNop()), repo, bus, serializer
}

func saveEvent(t *testing.T, repo *GormOutboxRepository, s *EventSerializer, ev shared.DomainEvent) *shared.OutboxEntry {
	t.Helper()
	payload, err := s.Serialize(ev)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(ev, payload)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestOutboxProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers and marks sent", func(t *testing.T) {
		p, repo, bus, s := setupProcessor(t)
		rec := &fakeRecorder{}
		p.SetRecorder(rec)
		h := newTestHandler("TestEvent")
		bus.Subscribe(h)
		entry := saveEvent(t, repo, s, newTestEvent("TestEvent"))

		assert.Equal(t, 1, p.ProcessOnce(ctx))
		assert.Equal(t, 1, h.count())

		got, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.OutboxStatusSent, got.Status)
		assert.NotNil(t, got.ProcessedAt)
		assert.Equal(t, []recordedDelivery{{"TestEvent", shared.OutboxStatusSent}}, rec.got)

		assert.Equal(t, 0, p.ProcessOnce(ctx))
	})

	t.Run("handler failure schedules a retry", func(t *testing.T) {
		p, repo, bus, s := setupProcessor(t)
		h := newTestHandler("TestEvent")
		h.setError(errors.New("smtp down"))
		bus.Subscribe(h)
		entry := saveEvent(t, repo, s, newTestEvent("TestEvent"))

		p.ProcessOnce(ctx)

		got, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.OutboxStatusFailed, got.Status)
		assert.Equal(t, 1, got.RetryCount)
		assert.Contains(t, got.LastError, "smtp down")
		require.NotNil(t, got.NextRetryAt)
	})

	t.Run("unknown event type dies after max retries", func(t *testing.T) {
		p, repo, _, _ := setupProcessor(t)
		entry := shared.NewOutboxEntry(newTestEvent("Unregistered"), []byte(`{}`))
		entry.MaxRetries = 1
		require.NoError(t, repo.Save(ctx, entry))

		p.ProcessOnce(ctx)

		got, err := repo.FindByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.True(t, got.IsDead())

		retried, err := p.RetryDead(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, shared.OutboxStatusPending, retried.Status)
		assert.Zero(t, retried.RetryCount)
	})
}

func TestOutboxProcessor_RetryDead(t *testing.T) {
	p, repo, _, s := setupProcessor(t)
	ctx := context.Background()

	_, err := p.RetryDead(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	entry := saveEvent(t, repo, s, newTestEvent("TestEvent"))
	_, err = p.RetryDead(ctx, entry.ID)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	p, repo, bus, s := setupProcessor(t)
	h := newTestHandler("TestEvent")
	bus.Subscribe(h)
	saveEvent(t, repo, s, newTestEvent("TestEvent"))

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return h.count() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}
