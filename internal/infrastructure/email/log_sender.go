package email

import (
	"context"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them. It is the
// development transport.
type LogSender struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewLogSender(maxAttachmentBytes int64, log *zap.Logger) *LogSender {
	return &LogSender{maxBytes: maxAttachmentBytes, logger: log.Named("mail")}
}

func (s *LogSender) Send(ctx context.Context, email notification.Email) (string, error) {
	attachments := boundAttachments(ctx, s.logger, s.maxBytes, email.Attachments)
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Filename)
	}
	id := "log-" + uuid.NewString()
	logger.Enrich(ctx, s.logger).Info("Email",
		zap.String("message_id", id),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("html_bytes", len(email.HTML)),
		zap.Strings("attachments", names))
	return id, nil
}

var _ notification.EmailSender = (*LogSender)(nil)
