package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// IntentService drives payment intents through the processor and keeps the
// local state machine and the linked invoice ledger in step with it.
type IntentService struct {
	scope     uow.TransactionScope
	reads     uow.Repositories
	processor payment.Processor
	metrics   *telemetry.SettlementMetrics
	retries   int
	now       func() time.Time
	logger    *zap.Logger
}

// IntentServiceConfig wires an IntentService.
type IntentServiceConfig struct {
	Scope     uow.TransactionScope
	Reads     uow.Repositories
	Processor payment.Processor
	Metrics   *telemetry.SettlementMetrics
	Logger    *zap.Logger
}

// NewIntentService creates an IntentService.
func NewIntentService(cfg IntentServiceConfig) *IntentService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &IntentService{
		scope:     cfg.Scope,
		reads:     cfg.Reads,
		processor: cfg.Processor,
		metrics:   cfg.Metrics,
		retries:   uow.DefaultConflictRetries,
		now:       time.Now,
		logger:    cfg.Logger.Named("intents"),
	}
}

// CreateIntent validates the request, stores a PENDING intent and creates it
// at the processor. A processor that confirms synchronously moves the intent
// in the same call, and a synchronous capture posts to the linked invoice.
func (s *IntentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResponse, error) {
	intent, err := payment.NewPaymentIntent(payment.NewIntentInput{
		Amount:           req.Amount,
		Currency:         req.Currency,
		CaptureMethod:    payment.CaptureMethod(req.CaptureMethod),
		TripRef:          req.TripRef,
		CustomerRef:      req.CustomerRef,
		PaymentMethodRef: req.PaymentMethodRef,
		InvoiceID:        req.InvoiceID,
		Metadata:         req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	ctx = logger.WithIntentID(ctx, intent.ID.String())

	if intent.InvoiceID != nil {
		inv, err := s.reads.Invoices().FindByID(ctx, *intent.InvoiceID)
		if err != nil {
			if shared.KindOf(err) == shared.KindNotFound {
				return nil, shared.NewValidationError("linked invoice does not exist")
			}
			return nil, err
		}
		if inv.Currency != intent.Currency {
			return nil, shared.NewValidationError(fmt.Sprintf("intent currency %s does not match invoice currency %s", intent.Currency, inv.Currency))
		}
	}
	if intent.PaymentMethodRef == "" && intent.CustomerRef != "" {
		def, err := s.reads.Methods().FindDefault(ctx, intent.CustomerRef)
		if err != nil {
			return nil, err
		}
		if def != nil {
			intent.PaymentMethodRef = def.ExternalReference
		}
	}

	if err := s.reads.Intents().Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("create intent: %w", err)
	}

	remote, err := s.createAtProcessor(ctx, intent)
	if err != nil {
		return nil, s.failOnCardError(ctx, intent.ID, err)
	}

	settled, err := s.applyRemote(ctx, intent.ID, remote)
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Payment intent created",
		zap.String("external_reference", settled.ExternalReference),
		zap.Int64("amount", settled.Amount),
		zap.String("status", string(settled.Status)))

	resp := ToIntentResponse(settled)
	return &resp, nil
}

// GetIntent returns the local state of an intent.
func (s *IntentService) GetIntent(ctx context.Context, id uuid.UUID) (*IntentResponse, error) {
	intent, err := s.reads.Intents().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToIntentResponse(intent)
	return &resp, nil
}

// Capture captures an AUTHORIZED intent. The state and amount guards run
// before the processor is contacted.
func (s *IntentService) Capture(ctx context.Context, id uuid.UUID, amountToCapture *int64) (*IntentResponse, error) {
	ctx = logger.WithIntentID(ctx, id.String())
	intent, err := s.reads.Intents().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := intent.EnsureCapturable(amountToCapture); err != nil {
		return nil, err
	}

	remote, err := callProcessor(ctx, s.metrics, "capture", func(ctx context.Context) (*payment.ProcessorIntent, error) {
		return s.processor.CaptureIntent(ctx, payment.CaptureIntentRequest{
			IdempotencyKey:  "intent-capture:" + intent.ID.String(),
			Reference:       intent.ExternalReference,
			AmountToCapture: amountToCapture,
		})
	})
	if err != nil {
		return nil, err
	}

	settled, err := s.applyRemote(ctx, id, remote)
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Payment intent captured",
		zap.Int64("captured_amount", settled.CapturedAmount),
		zap.String("status", string(settled.Status)))

	resp := ToIntentResponse(settled)
	return &resp, nil
}

// Cancel cancels a PENDING or AUTHORIZED intent. Captured money is returned
// through a refund instead.
func (s *IntentService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*IntentResponse, error) {
	ctx = logger.WithIntentID(ctx, id.String())
	intent, err := s.reads.Intents().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if intent.Status == payment.IntentStatusFailed {
		resp := ToIntentResponse(intent)
		return &resp, nil
	}
	if err := intent.EnsureCancellable(); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled"
	}

	if intent.ExternalReference == "" {
		intent, err = s.resolveLostCreate(ctx, intent)
		if err != nil {
			return nil, err
		}
		if intent.Status == payment.IntentStatusFailed {
			resp := ToIntentResponse(intent)
			return &resp, nil
		}
		if err := intent.EnsureCancellable(); err != nil {
			return nil, err
		}
	}

	if intent.ExternalReference != "" {
		_, err := callProcessor(ctx, s.metrics, "cancel", func(ctx context.Context) (*payment.ProcessorIntent, error) {
			return s.processor.CancelIntent(ctx, payment.CancelIntentRequest{
				IdempotencyKey: "intent-cancel:" + intent.ID.String(),
				Reference:      intent.ExternalReference,
				Reason:         reason,
			})
		})
		if err != nil {
			return nil, err
		}
	}

	var cancelled *payment.PaymentIntent
	err = uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		locked, err := repos.Intents().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		cancelled = locked
		if locked.Status == payment.IntentStatusFailed {
			return nil
		}
		if err := locked.MarkFailed(reason); err != nil {
			return err
		}
		return repos.Intents().Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordIntentTransition(ctx, string(payment.IntentStatusFailed))
	logger.Enrich(ctx, s.logger).Info("Payment intent cancelled", zap.String("reason", reason))

	resp := ToIntentResponse(cancelled)
	return &resp, nil
}

// Reconcile fetches the processor's view of an intent and applies it. It is
// the recovery path after a call whose outcome is unknown. An intent that
// never received a processor reference replays its create call under the
// original idempotency key.
func (s *IntentService) Reconcile(ctx context.Context, id uuid.UUID) (*IntentResponse, error) {
	ctx = logger.WithIntentID(ctx, id.String())
	intent, err := s.reads.Intents().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var remote *payment.ProcessorIntent
	if intent.ExternalReference == "" {
		if intent.Status != payment.IntentStatusPending {
			resp := ToIntentResponse(intent)
			return &resp, nil
		}
		remote, err = s.createAtProcessor(ctx, intent)
	} else {
		remote, err = callProcessor(ctx, s.metrics, "retrieve", func(ctx context.Context) (*payment.ProcessorIntent, error) {
			return s.processor.RetrieveIntent(ctx, intent.ExternalReference)
		})
	}
	if err != nil {
		return nil, err
	}

	settled, err := s.applyRemote(ctx, id, remote)
	if err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("Payment intent reconciled",
		zap.String("remote_status", remote.Status),
		zap.String("status", string(settled.Status)))

	resp := ToIntentResponse(settled)
	return &resp, nil
}

// resolveLostCreate replays the create call of an intent that never received
// a processor reference and applies the answer. The processor may hold a
// live or even captured intent for it, so nothing may be decided locally
// until the replay lands. A declined replay means no chargeable intent exists.
func (s *IntentService) resolveLostCreate(ctx context.Context, intent *payment.PaymentIntent) (*payment.PaymentIntent, error) {
	remote, err := s.createAtProcessor(ctx, intent)
	if err != nil {
		if pe, ok := payment.AsProcessorError(err); ok && pe.IsCardFailure() {
			return intent, nil
		}
		logger.L(ctx).Warn("Processor outcome of intent unknown; refusing to act", zap.Error(err))
		return nil, shared.NewInvalidStateError("payment intent outcome unknown at processor; reconcile first")
	}
	return s.applyRemote(ctx, intent.ID, remote)
}

func (s *IntentService) createAtProcessor(ctx context.Context, intent *payment.PaymentIntent) (*payment.ProcessorIntent, error) {
	md := make(map[string]string, len(intent.Metadata)+2)
	for k, v := range intent.Metadata {
		md[k] = v
	}
	md["intent_id"] = intent.ID.String()
	if intent.TripRef != "" {
		md["trip_ref"] = intent.TripRef
	}
	return callProcessor(ctx, s.metrics, "create", func(ctx context.Context) (*payment.ProcessorIntent, error) {
		return s.processor.CreateIntent(ctx, payment.CreateIntentRequest{
			IdempotencyKey:   "intent-create:" + intent.ID.String(),
			Amount:           intent.Amount,
			Currency:         string(intent.Currency),
			CustomerRef:      intent.CustomerRef,
			PaymentMethodRef: intent.PaymentMethodRef,
			CaptureMethod:    intent.CaptureMethod,
			Description:      intent.TripRef,
			Metadata:         md,
		})
	})
}

// applyRemote locks the intent, attaches the processor identifiers and moves
// the status through the order-aware mapping. A move onto CAPTURED posts the
// ledger payment in the same transaction.
func (s *IntentService) applyRemote(ctx context.Context, id uuid.UUID, remote *payment.ProcessorIntent) (*payment.PaymentIntent, error) {
	var (
		intent *payment.PaymentIntent
		moved  payment.Transition
		ok     bool
	)
	err := uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		intent, err = repos.Intents().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		changed := false
		if intent.ExternalReference == "" && remote.Reference != "" {
			intent.AttachExternal(remote.Reference, remote.ClientSecret)
			changed = true
		}
		moved, ok = intent.ApplyExternalStatus(remote.Status, remote.AmountReceived)
		if !ok && remote.Status == payment.ExternalCanceled && intent.Status != payment.IntentStatusFailed {
			logger.L(ctx).Warn("Processor reports cancellation of a settled intent",
				zap.String("status", string(intent.Status)))
		}
		if ok && moved.To == payment.IntentStatusFailed && remote.LastError != "" {
			intent.FailureReason = remote.LastError
		}
		if !ok && !changed {
			return nil
		}
		if ok && moved.To == payment.IntentStatusCaptured {
			if _, err := PostCapture(ctx, repos, intent, s.now()); err != nil {
				return err
			}
		}
		return repos.Intents().Save(ctx, intent)
	})
	if err != nil {
		return nil, err
	}
	if ok {
		s.metrics.RecordIntentTransition(ctx, string(moved.To))
		if moved.To == payment.IntentStatusCaptured && intent.InvoiceID != nil {
			s.metrics.RecordLedgerPayment(ctx, "card", string(intent.Currency), intent.CapturedAmount)
		}
	}
	return intent, nil
}

// failOnCardError marks a freshly created intent FAILED when the processor
// rejected the instrument. Any other failure leaves it PENDING for Reconcile.
func (s *IntentService) failOnCardError(ctx context.Context, id uuid.UUID, cause error) error {
	pe, ok := payment.AsProcessorError(cause)
	if !ok || !pe.IsCardFailure() {
		logger.L(ctx).Warn("Intent creation outcome unknown; left pending", zap.Error(cause))
		return cause
	}
	err := s.scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		intent, err := repos.Intents().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := intent.MarkFailed(pe.Message); err != nil {
			return nil
		}
		return repos.Intents().Save(ctx, intent)
	})
	if err != nil {
		logger.L(ctx).Error("Failed to mark declined intent", zap.Error(err))
	} else {
		s.metrics.RecordIntentTransition(ctx, string(payment.IntentStatusFailed))
	}
	return cause
}
