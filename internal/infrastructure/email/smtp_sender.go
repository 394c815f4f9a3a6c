// Package email implements the notification.EmailSender port.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers mail through an SMTP relay with STARTTLS and PLAIN auth.
type SMTPSender struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	maxBytes int64
	send     sendFunc
	logger   *zap.Logger
}

// NewSMTPSender creates a sender from cfg. Attachments larger than
// maxAttachmentBytes are dropped with a warning.
func NewSMTPSender(cfg config.EmailConfig, maxAttachmentBytes int64, log *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		from:     cfg.From,
		auth:     auth,
		maxBytes: maxAttachmentBytes,
		send:     smtp.SendMail,
		logger:   log.Named("smtp"),
	}
}

// Send builds a MIME message and hands it to the relay. The returned id is
// the Message-ID header the message was sent with.
func (s *SMTPSender) Send(ctx context.Context, email notification.Email) (string, error) {
	if _, err := mail.ParseAddress(email.To); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	attachments := s.boundAttachments(ctx, email.Attachments)

	msg, err := buildMessage(s.from, email, attachments, messageID, time.Now())
	if err != nil {
		return "", err
	}

	done := make(chan error, 1)
	go func() { done <- s.send(s.addr, s.auth, s.from, []string{email.To}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("smtp send: %w", err)
		}
		return messageID, nil
	case <-ctx.Done():
		return "", fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (s *SMTPSender) boundAttachments(ctx context.Context, in []notification.Attachment) []notification.Attachment {
	return boundAttachments(ctx, s.logger, s.maxBytes, in)
}

// boundAttachments drops every attachment over max bytes. A non-positive max
// keeps everything.
func boundAttachments(ctx context.Context, log *zap.Logger, max int64, in []notification.Attachment) []notification.Attachment {
	if max <= 0 {
		return in
	}
	out := make([]notification.Attachment, 0, len(in))
	for _, a := range in {
		if int64(len(a.Data)) > max {
			logger.Enrich(ctx, log).Warn("Dropping oversize attachment",
				zap.String("filename", a.Filename),
				zap.Int("size", len(a.Data)),
				zap.Int64("max", max))
			continue
		}
		out = append(out, a)
	}
	return out
}

// buildMessage renders an RFC 5322 message. Without attachments the body is
// a single text/html part; with attachments it is multipart/mixed.
func buildMessage(from string, email notification.Email, attachments []notification.Attachment, messageID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", from)
	header("To", email.To)
	header("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")

	if len(attachments) == 0 {
		header("Content-Type", `text/html; charset="utf-8"`)
		header("Content-Transfer-Encoding", "base64")
		buf.WriteString("\r\n")
		writeBase64(&buf, []byte(email.HTML))
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	writeBase64(&body, []byte(email.HTML))
	if _, err := part.Write(body.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		var data bytes.Buffer
		writeBase64(&data, a.Data)
		if _, err := part.Write(data.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64 writes data base64 encoded in 76-character lines.
func writeBase64(buf *bytes.Buffer, data []byte) {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		buf.WriteString(enc[:76])
		buf.WriteString("\r\n")
		enc = enc[76:]
	}
	buf.WriteString(enc)
	buf.WriteString("\r\n")
}

// NewSender selects the transport configured by cfg.Driver.
func NewSender(cfg config.EmailConfig, maxAttachmentBytes int64, log *zap.Logger) notification.EmailSender {
	if strings.EqualFold(cfg.Driver, "smtp") {
		return NewSMTPSender(cfg, maxAttachmentBytes, log)
	}
	return NewLogSender(maxAttachmentBytes, log)
}

var _ notification.EmailSender = (*SMTPSender)(nil)
