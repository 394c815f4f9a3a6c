package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"go.uber.org/zap"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newTestSender(maxBytes int64, sendErr error) (*SMTPSender, *capturedMail) {
	s := NewSMTPSender(config.EmailConfig{
		Driver:   "smtp",
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "billing@transitpay.example",
	}, maxBytes, zap.NewNop())
	captured := &capturedMail{}
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr, captured.from, captured.to, captured.msg = addr, from, to, msg
		return sendErr
	}
	return s, captured
}

func TestSMTPSender_SendPlainHTML(t *testing.T) {
	s, captured := newTestSender(0, nil)

	id, err := s.Send(context.Background(), notification.Email{
		To:      "ap@clinic.example",
		Subject: "Invoice INV-1001",
		HTML:    "<p>Amount due: $4,050.00</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "billing@transitpay.example", captured.from)
	assert.Equal(t, []string{"ap@clinic.example"}, captured.to)

	msg, err := mail.ReadMessage(bytes.NewReader(captured.msg))
	require.NoError(t, err)
	assert.Equal(t, id, msg.Header.Get("Message-ID"))
	assert.True(t, strings.HasSuffix(id, "@smtp.example.com>"))
	mediaType, _, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", mediaType)
	assert.Equal(t, "base64", msg.Header.Get("Content-Transfer-Encoding"))
}

func TestSMTPSender_SendWithAttachments(t *testing.T) {
	s, captured := newTestSender(10, nil)

	_, err := s.Send(context.Background(), notification.Email{
		To:      "ap@clinic.example",
		Subject: "Invoice INV-1001",
		HTML:    "<p>hi</p>",
		Attachments: []notification.Attachment{
			{Filename: "INV-1001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1")},
			{Filename: "huge.bin", Data: bytes.Repeat([]byte("x"), 11)},
		},
	})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(captured.msg))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var parts []string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		parts = append(parts, p.Header.Get("Content-Type"))
		if p.FileName() != "" {
			assert.Equal(t, "INV-1001.pdf", p.FileName())
		}
	}
	assert.Equal(t, []string{`text/html; charset="utf-8"`, "application/pdf"}, parts)
}

func TestSMTPSender_Errors(t *testing.T) {
	t.Run("invalid recipient", func(t *testing.T) {
		s, captured := newTestSender(0, nil)
		_, err := s.Send(context.Background(), notification.Email{To: "not an address"})
		require.Error(t, err)
		assert.Nil(t, captured.msg)
	})

	t.Run("relay failure", func(t *testing.T) {
		s, _ := newTestSender(0, errors.New("421 service not available"))
		_, err := s.Send(context.Background(), notification.Email{To: "ap@clinic.example"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "421")
	})

	t.Run("context cancelled", func(t *testing.T) {
		s, _ := newTestSender(0, nil)
		block := make(chan struct{})
		defer close(block)
		s.send = func(string, smtp.Auth, string, []string, []byte) error {
			<-block
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := s.Send(ctx, notification.Email{To: "ap@clinic.example"})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestWriteBase64_WrapsLines(t *testing.T) {
	var buf bytes.Buffer
	writeBase64(&buf, bytes.Repeat([]byte("a"), 120))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestNewSender_SelectsDriver(t *testing.T) {
	assert.IsType(t, &SMTPSender{}, NewSender(config.EmailConfig{Driver: "smtp", Host: "h", Port: 25}, 0, zap.NewNop()))
	assert.IsType(t, &LogSender{}, NewSender(config.EmailConfig{Driver: "log"}, 0, zap.NewNop()))
}

func TestLogSender_Send(t *testing.T) {
	s := NewLogSender(4, zap.NewNop())
	id, err := s.Send(context.Background(), notification.Email{
		To:          "ap@clinic.example",
		Subject:     "Receipt",
		Attachments: []notification.Attachment{{Filename: "big.pdf", Data: []byte("12345")}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))
}
