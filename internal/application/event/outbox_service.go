package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
)

// DeadLetterRetrier moves one dead entry back to pending. The outbox
// processor implements it.
type DeadLetterRetrier interface {
	RetryDead(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error)
}

// OutboxService exposes the outbox to operators: dead letters, retries and
// per-status counts.
type OutboxService struct {
	repo    shared.OutboxRepository
	retrier DeadLetterRetrier
	logger  *zap.Logger
}

func NewOutboxService(repo shared.OutboxRepository, retrier DeadLetterRetrier, log *zap.Logger) *OutboxService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutboxService{repo: repo, retrier: retrier, logger: log.Named("outbox_admin")}
}

// OutboxEntryResponse is an outbox entry without its payload.
type OutboxEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	EventType     string     `json:"event_type"`
	AggregateID   uuid.UUID  `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastError     string     `json:"last_error,omitempty"`
	NextRetryAt   *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListDeadRequest pages through dead letters.
type ListDeadRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OutboxStats counts entries per status.
type OutboxStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ListDead returns one page of dead-letter entries.
func (s *OutboxService) ListDead(ctx context.Context, req ListDeadRequest) (shared.Paginated[OutboxEntryResponse], error) {
	f := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize()
	entries, total, err := s.repo.FindDead(ctx, f.Page, f.PageSize)
	if err != nil {
		return shared.Paginated[OutboxEntryResponse]{}, err
	}
	out := make([]OutboxEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toOutboxEntryResponse(e)
	}
	return shared.NewPaginated(out, total, f.Page, f.PageSize), nil
}

// GetEntry returns one entry.
func (s *OutboxService) GetEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryDeadEntry moves a dead entry back to pending. Entries in any other
// status are rejected with an invalid-state error.
func (s *OutboxService) RetryDeadEntry(ctx context.Context, id uuid.UUID) (*OutboxEntryResponse, error) {
	entry, err := s.retrier.RetryDead(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("dead letter reset for retry",
		zap.String("id", id.String()),
		zap.String("event_type", entry.EventType),
	)
	resp := toOutboxEntryResponse(entry)
	return &resp, nil
}

// RetryAllDead resets every dead entry and returns how many were reset.
// Entries that fail to update are logged and skipped.
func (s *OutboxService) RetryAllDead(ctx context.Context) (int64, error) {
	const pageSize = 100
	log := logger.Enrich(ctx, s.logger)
	var count int64
	for {
		// Reset entries leave the dead set, so the first page is always the next batch.
		entries, _, err := s.repo.FindDead(ctx, 1, pageSize)
		if err != nil {
			return count, err
		}
		progressed := false
		for _, entry := range entries {
			if err := entry.ResetForRetry(); err != nil {
				continue
			}
			if err := s.repo.Update(ctx, entry); err != nil {
				log.Error("failed to reset dead letter", zap.String("id", entry.ID.String()), zap.Error(err))
				continue
			}
			progressed = true
			count++
		}
		if len(entries) < pageSize || !progressed {
			break
		}
	}
	log.Info("dead letters reset for retry", zap.Int64("count", count))
	return count, nil
}

// Stats returns per-status counts.
func (s *OutboxService) Stats(ctx context.Context) (*OutboxStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &OutboxStats{
		Pending:    counts[shared.OutboxStatusPending],
		Processing: counts[shared.OutboxStatusProcessing],
		Sent:       counts[shared.OutboxStatusSent],
		Failed:     counts[shared.OutboxStatusFailed],
		Dead:       counts[shared.OutboxStatusDead],
		Total:      total,
	}, nil
}

func toOutboxEntryResponse(e *shared.OutboxEntry) OutboxEntryResponse {
	return OutboxEntryResponse{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
