package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"

	"github.com/transitpay/settlement/internal/domain/payment"
)

// intentIDMetadataKey is the metadata entry the intent service stamps on
// every processor intent it creates.
const intentIDMetadataKey = "intent_id"

// toWebhookEvent reduces a verified Stripe event to the fields the reducer
// reads. Events the engine does not track come back with an empty IntentRef.
func toWebhookEvent(ev stripe.Event) (payment.WebhookEvent, error) {
	out := payment.WebhookEvent{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Created: time.Unix(ev.Created, 0).UTC(),
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}

	switch {
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return out, fmt.Errorf("decode payment intent of %s: %w", ev.ID, err)
		}
		out.IntentRef = pi.ID
		out.IntentID = pi.Metadata[intentIDMetadataKey]
		out.ExternalStatus = string(pi.Status)
		out.AmountReceived = pi.AmountReceived
		if pi.LastPaymentError != nil {
			out.FailureMessage = pi.LastPaymentError.Msg
		}
	case out.Type == payment.EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return out, fmt.Errorf("decode charge of %s: %w", ev.ID, err)
		}
		if ch.PaymentIntent != nil {
			out.IntentRef = ch.PaymentIntent.ID
		}
		out.AmountRefunded = ch.AmountRefunded
		out.RefundRef = latestRefund(&ch)
	}
	return out, nil
}

// latestRefund names the refund behind a charge.refunded event. Charges
// without an embedded refund list get a reference derived from the charge and
// its cumulative refunded amount, which is stable across redeliveries.
func latestRefund(ch *stripe.Charge) string {
	if ch.Refunds != nil && len(ch.Refunds.Data) > 0 && ch.Refunds.Data[0] != nil {
		return ch.Refunds.Data[0].ID
	}
	return fmt.Sprintf("%s:%d", ch.ID, ch.AmountRefunded)
}
