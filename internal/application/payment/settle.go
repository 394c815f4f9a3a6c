package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	appinvoice "github.com/transitpay/settlement/internal/application/invoice"
	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// PostCapture writes the ledger payment for a captured intent linked to an
// invoice. It runs in the caller's transaction, after the intent moved to
// CAPTURED, and is a no-op for unlinked intents. The processor reference
// makes a second post for the same capture a no-op as well.
func PostCapture(ctx context.Context, repos uow.Repositories, intent *payment.PaymentIntent, now time.Time) (*invoice.Payment, error) {
	if intent.InvoiceID == nil || intent.CapturedAmount <= 0 {
		return nil, nil
	}
	p, inv, err := appinvoice.ApplyPayment(ctx, repos, *intent.InvoiceID, invoice.NewPaymentInput{
		Amount:           intent.CapturedAmount,
		Method:           invoice.MethodCard,
		Reference:        intent.ExternalReference,
		PaymentDate:      now,
		Notes:            "captured payment " + intent.ExternalReference,
		AllowOverpayment: true,
	}, now)
	if err != nil {
		return nil, err
	}
	if p != nil && inv.AmountPaid > inv.TotalAmount {
		logger.L(ctx).Warn("Captured amount exceeds invoice balance",
			zap.String("invoice_id", inv.ID.String()),
			zap.Int64("amount_paid", inv.AmountPaid),
			zap.Int64("total_amount", inv.TotalAmount))
	}
	return p, nil
}

// PostRefund creates the refund row, applies it to the locked intent and
// appends the reversing ledger entry on the linked invoice. The refund must
// already be accepted by the processor.
func PostRefund(ctx context.Context, repos uow.Repositories, intent *payment.PaymentIntent, refund *payment.Refund, now time.Time) error {
	if err := intent.ApplyRefund(refund); err != nil {
		return err
	}
	if err := repos.Refunds().Create(ctx, refund); err != nil {
		return err
	}
	if intent.InvoiceID != nil {
		if _, err := appinvoice.ApplyRefundReversal(ctx, repos, *intent.InvoiceID, refund.Amount, refund.ExternalReference, refund.Reason, now); err != nil {
			return err
		}
	}
	if err := repos.Intents().Save(ctx, intent); err != nil {
		return err
	}
	return uow.RecordEvents(ctx, repos, intent)
}

// callProcessor times a processor call, records it and wraps it in a span.
func callProcessor[T any](ctx context.Context, metrics *telemetry.SettlementMetrics, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.StartSpan(ctx, "processor."+op, telemetry.AttrOperation.String(op))
	start := time.Now()
	out, err := fn(ctx)
	kind := ""
	if pe, ok := payment.AsProcessorError(err); ok {
		kind = string(pe.Kind)
	} else if err != nil {
		kind = string(payment.ErrorKindUnknown)
	}
	metrics.RecordProcessorCall(ctx, op, kind, time.Since(start))
	telemetry.EndSpan(span, err)
	return out, err
}
