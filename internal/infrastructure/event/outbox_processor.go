package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"go.uber.org/zap"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// Cleanup prunes SENT entries older than CleanupRetention every
	// CleanupInterval. Failed and dead entries are never pruned.
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     2 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// DeliveryRecorder observes the outcome of each outbox delivery.
type DeliveryRecorder interface {
	RecordOutboxDelivery(ctx context.Context, eventType string, status shared.OutboxStatus)
}

// OutboxProcessor polls the outbox and hands committed settlement events to
// the bus. Delivery is at least once: an entry is marked SENT only after
// every subscribed handler returned nil.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	bus        shared.EventPublisher
	serializer *EventSerializer
	cfg        OutboxProcessorConfig
	log        *zap.Logger
	recorder   DeliveryRecorder
	now        func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxProcessor(
	repo shared.OutboxRepository,
	bus shared.EventPublisher,
	serializer *EventSerializer,
	cfg OutboxProcessorConfig,
	log *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		repo:       repo,
		bus:        bus,
		serializer: serializer,
		cfg:        cfg,
		log:        log.Named("outbox"),
		now:        time.Now,
	}
}

// SetRecorder attaches a delivery observer. Call before Start.
func (p *OutboxProcessor) SetRecorder(r DeliveryRecorder) {
	p.recorder = r
}

func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.every(ctx, p.cfg.PollInterval, func(ctx context.Context) { p.ProcessOnce(ctx) })
	if p.cfg.CleanupEnabled {
		p.every(ctx, p.cfg.CleanupInterval, p.prune)
	}
	p.log.Debug("polling outbox",
		zap.Int("batch_size", p.cfg.BatchSize),
		zap.Duration("poll_interval", p.cfg.PollInterval),
		zap.Bool("cleanup", p.cfg.CleanupEnabled),
	)
	return nil
}

// Stop cancels polling and waits for the in-flight batch, bounded by ctx.
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.log.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// ProcessOnce delivers one batch of pending entries, then one batch of
// failed entries whose backoff has elapsed. It returns how many entries this
// call claimed.
func (p *OutboxProcessor) ProcessOnce(ctx context.Context) int {
	sources := []struct {
		name  string
		fetch func() ([]*shared.OutboxEntry, error)
	}{
		{"pending", func() ([]*shared.OutboxEntry, error) { return p.repo.FindPending(ctx, p.cfg.BatchSize) }},
		{"retryable", func() ([]*shared.OutboxEntry, error) { return p.repo.FindRetryable(ctx, p.now(), p.cfg.BatchSize) }},
	}

	total := 0
	for _, src := range sources {
		entries, err := src.fetch()
		if err != nil {
			p.log.Error("outbox query failed", zap.String("source", src.name), zap.Error(err))
			return total
		}
		total += p.claimAndDeliver(ctx, entries)
	}
	return total
}

func (p *OutboxProcessor) claimAndDeliver(ctx context.Context, candidates []*shared.OutboxEntry) int {
	if len(candidates) == 0 {
		return 0
	}
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	won, err := p.repo.MarkProcessing(ctx, ids)
	if err != nil {
		p.log.Error("claiming outbox entries failed", zap.Int("candidates", len(ids)), zap.Error(err))
		return 0
	}
	for _, entry := range won {
		p.settle(ctx, entry, p.deliver(ctx, entry))
	}
	return len(won)
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	evt, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return err
	}
	return p.bus.Publish(ctx, evt)
}

// settle records the delivery outcome on the entry and persists it.
func (p *OutboxProcessor) settle(ctx context.Context, entry *shared.OutboxEntry, deliveryErr error) {
	log := p.log.With(
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_id", entry.AggregateID.String()),
	)

	switch {
	case deliveryErr == nil:
		entry.MarkSent()
	default:
		entry.MarkFailed(deliveryErr.Error())
		if entry.IsDead() {
			log.Warn("outbox entry dead-lettered",
				zap.String("aggregate_type", entry.AggregateType),
				zap.Int("attempts", entry.RetryCount),
				zap.String("last_error", entry.LastError),
			)
		} else {
			log.Error("outbox delivery failed",
				zap.Int("attempt", entry.RetryCount),
				zap.Timep("next_retry_at", entry.NextRetryAt),
				zap.Error(deliveryErr),
			)
		}
	}

	if err := p.repo.Update(ctx, entry); err != nil {
		log.Error("persisting outbox outcome failed", zap.String("status", string(entry.Status)), zap.Error(err))
		return
	}
	if p.recorder != nil {
		p.recorder.RecordOutboxDelivery(ctx, entry.EventType, entry.Status)
	}
}

// RetryDead moves a dead-letter entry back to pending with a fresh retry
// budget.
func (p *OutboxProcessor) RetryDead(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	entry, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.ResetForRetry(); err != nil {
		return nil, err
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	p.log.Info("dead outbox entry requeued", zap.String("entry_id", id.String()), zap.String("event_type", entry.EventType))
	return entry, nil
}

func (p *OutboxProcessor) prune(ctx context.Context) {
	cutoff := p.now().Add(-p.cfg.CleanupRetention)
	n, err := p.repo.DeleteOlderThan(ctx, cutoff)
	switch {
	case err != nil:
		p.log.Error("outbox cleanup failed", zap.Error(err))
	case n > 0:
		p.log.Info("pruned sent outbox entries", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
}
