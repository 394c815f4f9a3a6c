package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// Dispatcher renders templates, hands them to the mail transport and keeps
// an audit row for every attempt.
type Dispatcher struct {
	sender  notification.EmailSender
	logs    notification.LogRepository
	metrics *telemetry.SettlementMetrics
	now     func() time.Time
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher. metrics may be nil.
func NewDispatcher(sender notification.EmailSender, logs notification.LogRepository, metrics *telemetry.SettlementMetrics, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sender:  sender,
		logs:    logs,
		metrics: metrics,
		now:     time.Now,
		logger:  log.Named("notifications"),
	}
}

// Send delivers one message. Failures are logged and recorded on the
// notification log; they never reach the caller.
func (d *Dispatcher) Send(ctx context.Context, key notification.TemplateKey, vars notification.Vars, recipient string, attachments ...notification.Attachment) *notification.Log {
	log := logger.Enrich(ctx, d.logger).With(
		zap.String("template", string(key)),
		zap.String("recipient", recipient),
	)
	entry := &notification.Log{
		BaseEntity: shared.NewBaseEntity(),
		Recipient:  recipient,
		Channel:    notification.ChannelEmail,
		Type:       key,
	}

	rendered, err := notification.Render(key, vars)
	if err == nil {
		entry.Subject = rendered.Subject
		entry.Content = rendered.HTML
		var messageID string
		messageID, err = d.sender.Send(ctx, notification.Email{
			To:          recipient,
			Subject:     rendered.Subject,
			HTML:        rendered.HTML,
			Attachments: attachments,
		})
		entry.TransportMessageID = messageID
	}

	if err != nil {
		entry.Status = notification.DeliveryFailed
		entry.Error = err.Error()
		log.Warn("notification delivery failed", zap.Error(err))
	} else {
		sentAt := d.now().UTC()
		entry.Status = notification.DeliverySent
		entry.SentAt = &sentAt
		log.Info("notification sent", zap.String("message_id", entry.TransportMessageID))
	}
	d.metrics.RecordNotification(ctx, string(key), string(entry.Status))

	if err := d.logs.Create(ctx, entry); err != nil {
		log.Error("failed to write notification log", zap.Error(err))
	}
	return entry
}

// ListLogs returns one page of delivery records.
func (d *Dispatcher) ListLogs(ctx context.Context, req ListLogsRequest) (shared.Paginated[LogResponse], error) {
	filter := notification.LogFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderDir: "desc",
		}.Normalize(),
		Recipient: req.Recipient,
		Type:      notification.TemplateKey(req.Type),
		Status:    notification.DeliveryStatus(req.Status),
	}
	items, total, err := d.logs.List(ctx, filter)
	if err != nil {
		return shared.Paginated[LogResponse]{}, err
	}
	out := make([]LogResponse, len(items))
	for i, l := range items {
		out[i] = ToLogResponse(l)
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}
