// Package webhook verifies processor callbacks and applies them to payment
// intents exactly once.
package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	apppayment "github.com/transitpay/settlement/internal/application/payment"
	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// Outcome is how a delivered event was handled.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

const (
	defaultTolerance = 300 * time.Second
	defaultSeenTTL   = 72 * time.Hour
	seenKeyPrefix    = "webhook:"
)

// ErrInvalidSignature is returned for every verification failure. The cause
// is logged, never returned.
var ErrInvalidSignature = shared.NewAuthenticationError("invalid webhook signature")

// Result reports what Dispatch did with one event.
type Result struct {
	EventID   string  `json:"event_id"`
	EventType string  `json:"event_type"`
	Outcome   Outcome `json:"outcome"`
	Status    string  `json:"status,omitempty"`
}

// Ingestor verifies and applies processor webhooks.
type Ingestor struct {
	scope     uow.TransactionScope
	secret    string
	tolerance time.Duration
	seen      shared.IdempotencyStore
	seenTTL   time.Duration
	metrics   *telemetry.SettlementMetrics
	retries   int
	now       func() time.Time
	logger    *zap.Logger
}

// IngestorConfig wires an Ingestor. Seen is an optional fast-path store in
// front of the processed_webhook_events table.
type IngestorConfig struct {
	Scope     uow.TransactionScope
	Secret    string
	Tolerance time.Duration
	Seen      shared.IdempotencyStore
	SeenTTL   time.Duration
	Metrics   *telemetry.SettlementMetrics
	Logger    *zap.Logger
}

// NewIngestor creates an Ingestor. A missing signing secret is a
// configuration error.
func NewIngestor(cfg IngestorConfig) (*Ingestor, error) {
	if cfg.Secret == "" {
		return nil, shared.NewConfigurationError("webhook signing secret is required")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}
	if cfg.SeenTTL <= 0 {
		cfg.SeenTTL = defaultSeenTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Ingestor{
		scope:     cfg.Scope,
		secret:    cfg.Secret,
		tolerance: cfg.Tolerance,
		seen:      cfg.Seen,
		seenTTL:   cfg.SeenTTL,
		metrics:   cfg.Metrics,
		retries:   uow.DefaultConflictRetries,
		now:       time.Now,
		logger:    cfg.Logger.Named("webhook"),
	}, nil
}

// Verify checks the signature header against the raw payload and decodes the
// event. The comparison is constant time and the timestamp must be within
// the tolerance window.
func (i *Ingestor) Verify(ctx context.Context, payload []byte, signatureHeader string) (payment.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, i.secret, webhook.ConstructEventOptions{
		Tolerance:                i.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		logger.Security(logger.Enrich(ctx, i.logger), "security.webhook_signature_invalid",
			zap.String("reason", err.Error()),
			zap.Int("payload_bytes", len(payload)))
		i.metrics.RecordWebhook(ctx, "unverified", "rejected")
		return payment.WebhookEvent{}, ErrInvalidSignature
	}
	out, err := toWebhookEvent(ev)
	if err != nil {
		return payment.WebhookEvent{}, shared.NewValidationError("malformed webhook payload")
	}
	return out, nil
}

// Handle verifies and dispatches one delivery.
func (i *Ingestor) Handle(ctx context.Context, payload []byte, signatureHeader string) (*Result, error) {
	ev, err := i.Verify(ctx, payload, signatureHeader)
	if err != nil {
		return nil, err
	}
	return i.Dispatch(ctx, ev)
}

// Dispatch applies a verified event. The processed-event row, the intent
// mutation, any ledger entry and the outbox events commit together, so a
// redelivery after commit is a duplicate and a redelivery after a failure
// starts from scratch.
func (i *Ingestor) Dispatch(ctx context.Context, ev payment.WebhookEvent) (res *Result, err error) {
	ctx, span := telemetry.StartSpan(ctx, "webhook.dispatch",
		telemetry.AttrEventType.String(ev.Type))
	res = &Result{EventID: ev.ID, EventType: ev.Type}
	defer func() {
		outcome := "error"
		if err == nil {
			outcome = string(res.Outcome)
		}
		span.SetAttributes(telemetry.AttrOutcome.String(outcome))
		telemetry.EndSpan(span, err)
		i.metrics.RecordWebhook(ctx, ev.Type, outcome)
	}()

	log := logger.Enrich(ctx, i.logger).With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	if i.fastPathSeen(ctx, ev.ID) {
		res.Outcome = OutcomeDuplicate
		log.Debug("Webhook already processed")
		return res, nil
	}

	err = uow.ExecuteWithRetry(ctx, i.scope, i.retries, func(ctx context.Context, repos uow.Repositories) error {
		fresh, err := repos.ProcessedEvents().MarkProcessed(ctx, ev.ID, ev.Type)
		if err != nil {
			return err
		}
		if !fresh {
			res.Outcome = OutcomeDuplicate
			return nil
		}
		if !ev.IsIntentScoped() {
			res.Outcome = OutcomeIgnored
			return nil
		}
		outcome, status, err := i.apply(ctx, repos, ev)
		res.Outcome, res.Status = outcome, status
		return err
	})
	if err != nil {
		log.Error("Webhook processing failed", zap.Error(err))
		return res, err
	}

	i.remember(ctx, ev.ID)
	log.Info("Webhook handled", zap.String("outcome", string(res.Outcome)), zap.String("status", res.Status))
	return res, nil
}

// apply runs inside the transaction: lock, reduce, commit the decision.
func (i *Ingestor) apply(ctx context.Context, repos uow.Repositories, ev payment.WebhookEvent) (Outcome, string, error) {
	intent, attached, err := i.lockIntent(ctx, repos, ev)
	if err != nil {
		return "", "", err
	}
	if intent == nil {
		return OutcomeIgnored, "", nil
	}
	ctx = logger.WithIntentID(ctx, intent.ID.String())

	if ev.Type == payment.EventChargeRefunded && ev.RefundRef != "" {
		existing, err := repos.Refunds().FindByExternalReference(ctx, ev.RefundRef)
		if err != nil {
			return "", "", err
		}
		if existing != nil {
			return OutcomeDuplicate, string(intent.Status), nil
		}
	}

	d := payment.Reduce(intent.Snapshot(), ev)
	now := i.now()

	switch d.Action {
	case payment.ActionNone:
		reasonChanged := d.FailureReason != "" && d.FailureReason != intent.FailureReason && intent.Status.IsCancellable()
		if reasonChanged {
			if err := intent.ApplyDecision(d); err != nil {
				return "", "", err
			}
		}
		if reasonChanged || attached {
			if err := repos.Intents().Save(ctx, intent); err != nil {
				return "", "", err
			}
		}
		logger.L(ctx).Debug("Webhook implies no change", zap.String("reason", d.Reason))
		return OutcomeApplied, string(intent.Status), nil

	case payment.ActionTransition:
		if err := intent.ApplyDecision(d); err != nil {
			return "", "", err
		}
		if d.RecordLedgerPayment {
			if _, err := apppayment.PostCapture(ctx, repos, intent, now); err != nil {
				return "", "", err
			}
		}
		if err := repos.Intents().Save(ctx, intent); err != nil {
			return "", "", err
		}
		i.metrics.RecordIntentTransition(ctx, string(d.To))

	case payment.ActionExternalRefund:
		refund := payment.NewRefund(intent, d.RefundAmount, "refunded at processor", d.RefundRef, payment.RefundStatusSucceeded)
		refund.External = true
		if err := apppayment.PostRefund(ctx, repos, intent, refund, now); err != nil {
			return "", "", err
		}
		i.metrics.RecordRefund(ctx, string(refund.Currency))
		i.metrics.RecordIntentTransition(ctx, string(d.To))
	}
	return OutcomeApplied, string(intent.Status), nil
}

// lockIntent locks the intent an event is about. An intent whose create
// response was lost has no processor reference yet; it is found through the
// local id echoed in metadata and the reference is attached here, so the
// webhook settles it. attached reports that the caller must save the intent.
// A nil intent means the event names an intent that is bound elsewhere.
func (i *Ingestor) lockIntent(ctx context.Context, repos uow.Repositories, ev payment.WebhookEvent) (intent *payment.PaymentIntent, attached bool, err error) {
	intent, err = repos.Intents().FindByExternalReferenceForUpdate(ctx, ev.IntentRef)
	if err == nil || shared.KindOf(err) != shared.KindNotFound || ev.IntentID == "" {
		return intent, false, err
	}
	id, parseErr := uuid.Parse(ev.IntentID)
	if parseErr != nil {
		return nil, false, err
	}
	intent, err = repos.Intents().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if intent.ExternalReference != "" {
		logger.L(ctx).Warn("Webhook names an intent bound to another processor reference",
			zap.String("intent_id", intent.ID.String()),
			zap.String("bound_reference", intent.ExternalReference),
			zap.String("event_reference", ev.IntentRef))
		return nil, false, nil
	}
	intent.AttachExternal(ev.IntentRef, intent.ClientSecret)
	logger.L(ctx).Info("Processor reference attached from webhook",
		zap.String("intent_id", intent.ID.String()),
		zap.String("reference", ev.IntentRef))
	return intent, true, nil
}

func (i *Ingestor) fastPathSeen(ctx context.Context, eventID string) bool {
	if i.seen == nil {
		return false
	}
	ok, err := i.seen.Seen(ctx, seenKeyPrefix+eventID)
	if err != nil {
		logger.L(ctx).Warn("Idempotency store lookup failed", zap.Error(err))
		return false
	}
	return ok
}

func (i *Ingestor) remember(ctx context.Context, eventID string) {
	if i.seen == nil {
		return
	}
	if _, err := i.seen.Claim(ctx, seenKeyPrefix+eventID, i.seenTTL); err != nil {
		logger.L(ctx).Warn("Idempotency store write failed", zap.Error(err))
	}
}

