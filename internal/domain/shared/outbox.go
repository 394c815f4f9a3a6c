package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	// DefaultMaxRetries is the number of failed deliveries after which an
	// entry is parked as a dead letter.
	DefaultMaxRetries = 5
	// DefaultBaseBackoff is the delay after the first failure. Each further
	// failure doubles it, up to MaxBackoff.
	DefaultBaseBackoff = time.Second
	MaxBackoff         = 10 * time.Minute
)

// outboxNow is swapped in tests that need a fixed clock.
var outboxNow = time.Now

// RetryBackoff returns the delay before delivery attempt number attempt+1,
// where attempt counts failures so far (1 for the first failure).
func RetryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := DefaultBaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= MaxBackoff {
			return MaxBackoff
		}
	}
	return d
}

// OutboxEntry is a serialized domain event committed together with the
// intent or invoice change that raised it. The outbox processor delivers it
// to the event bus after commit, so notifications never describe a rolled
// back write.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := outboxNow()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanRetry reports whether a failed entry still has attempts left.
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// MarkProcessing claims the entry for delivery. Only pending and failed
// entries can be claimed.
func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
	default:
		return NewInvalidStateError(fmt.Sprintf("outbox entry is %s, only PENDING or FAILED entries can be claimed", e.Status))
	}
	e.transition(OutboxStatusProcessing)
	return nil
}

func (e *OutboxEntry) MarkSent() {
	e.transition(OutboxStatusSent)
	e.ProcessedAt = &e.UpdatedAt
}

// MarkFailed records a failed delivery. The entry is scheduled for another
// attempt after RetryBackoff, or goes dead once MaxRetries is reached.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	if e.RetryCount >= e.MaxRetries {
		e.transition(OutboxStatusDead)
		e.NextRetryAt = nil
		return
	}
	e.transition(OutboxStatusFailed)
	next := e.UpdatedAt.Add(RetryBackoff(e.RetryCount))
	e.NextRetryAt = &next
}

// ResetForRetry returns a dead letter to the pending queue with a fresh
// retry budget.
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return NewInvalidStateError(fmt.Sprintf("outbox entry is %s, only DEAD entries can be retried", e.Status))
	}
	e.transition(OutboxStatusPending)
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	return nil
}

func (e *OutboxEntry) transition(to OutboxStatus) {
	e.Status = to
	e.UpdatedAt = outboxNow()
}

// OutboxRepository stores outbox entries. Save runs on the caller's
// transaction; the remaining methods serve the processor and the operator
// API.
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	Update(ctx context.Context, entry *OutboxEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)

	// FindPending returns up to limit never-attempted entries, oldest first.
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable returns failed entries whose NextRetryAt is before the
	// given time.
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// MarkProcessing claims the given ids and returns only the entries this
	// caller won, so concurrent processors never deliver the same entry.
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)

	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
	// DeleteOlderThan prunes SENT entries processed before the cutoff.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
