package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// RefundService returns captured money through the processor.
type RefundService struct {
	scope     uow.TransactionScope
	reads     uow.Repositories
	processor payment.Processor
	metrics   *telemetry.SettlementMetrics
	retries   int
	now       func() time.Time
	logger    *zap.Logger
}

// NewRefundService creates a RefundService. It shares the intent service's
// wiring.
func NewRefundService(cfg IntentServiceConfig) *RefundService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &RefundService{
		scope:     cfg.Scope,
		reads:     cfg.Reads,
		processor: cfg.Processor,
		metrics:   cfg.Metrics,
		retries:   uow.DefaultConflictRetries,
		now:       time.Now,
		logger:    cfg.Logger.Named("refunds"),
	}
}

// Refund refunds amount of a captured intent, or the full remaining balance
// when amount is nil. The guards run before the processor is called. A refund
// the processor did not accept is stored as failed and leaves the intent and
// the ledger untouched.
func (s *RefundService) Refund(ctx context.Context, intentID uuid.UUID, req CreateRefundRequest) (*RefundResponse, error) {
	ctx = logger.WithIntentID(ctx, intentID.String())
	intent, err := s.reads.Intents().FindByID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	amount, err := intent.ResolveRefundAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// The key pins the refund to the intent's refunded total so a retry of
	// the same request is collapsed while a later, separate refund is not.
	// The reason is not part of the key and is never sent to the processor.
	key := fmt.Sprintf("refund:%s:%d:%d", intent.ID, intent.RefundedAmount, amount)
	remote, err := callProcessor(ctx, s.metrics, "refund", func(ctx context.Context) (*payment.ProcessorRefund, error) {
		return s.processor.CreateRefund(ctx, payment.RefundRequest{
			IdempotencyKey: key,
			IntentRef:      intent.ExternalReference,
			Amount:         amount,
			Metadata:       map[string]string{"intent_id": intent.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}

	status := payment.RefundStatusFromExternal(remote.Status)
	if !status.Accepted() {
		failed := payment.NewRefund(intent, amount, req.Reason, remote.Reference, status)
		if err := s.reads.Refunds().Create(ctx, failed); err != nil {
			return nil, err
		}
		logger.Enrich(ctx, s.logger).Warn("Refund rejected by processor",
			zap.String("refund_reference", remote.Reference),
			zap.String("remote_status", remote.Status))
		resp := ToRefundResponse(failed)
		return &resp, nil
	}

	var refund *payment.Refund
	err = uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		locked, err := repos.Intents().FindByIDForUpdate(ctx, intentID)
		if err != nil {
			return err
		}
		// The charge.refunded webhook may have committed this refund already.
		existing, err := repos.Refunds().FindByExternalReference(ctx, remote.Reference)
		if err != nil {
			return err
		}
		if existing != nil {
			refund = existing
			return nil
		}
		refund = payment.NewRefund(locked, amount, req.Reason, remote.Reference, status)
		return PostRefund(ctx, repos, locked, refund, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRefund(ctx, string(refund.Currency))
	logger.Enrich(ctx, s.logger).Info("Refund issued",
		zap.String("refund_reference", refund.ExternalReference),
		zap.Int64("amount", refund.Amount),
		zap.String("status", string(refund.Status)))

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// ListRefunds returns every refund recorded against an intent.
func (s *RefundService) ListRefunds(ctx context.Context, intentID uuid.UUID) ([]RefundResponse, error) {
	if _, err := s.reads.Intents().FindByID(ctx, intentID); err != nil {
		return nil, err
	}
	refunds, err := s.reads.Refunds().FindByIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	out := make([]RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, ToRefundResponse(r))
	}
	return out, nil
}
